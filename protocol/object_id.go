package protocol

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"sync/atomic"
	"time"
)

// ObjectID identifies a stored document (a User, Item, or Cart). It's a
// 24-character lower-case hex string of twelve bytes: a four-byte big-endian
// Unix timestamp, five bytes unique to this process, and a three-byte
// incrementing counter. ObjectIDs therefore sort roughly by creation time.
type ObjectID string

// NewObjectID returns a new, unique ObjectID.
func NewObjectID() ObjectID {
	var b [12]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(timeNow().Unix()))
	copy(b[4:9], processUnique[:])

	var c = atomic.AddUint32(&objectIDCounter, 1)
	b[9], b[10], b[11] = byte(c>>16), byte(c>>8), byte(c)

	return ObjectID(hex.EncodeToString(b[:]))
}

// ParseObjectID parses and returns a normalized ObjectID from |s|,
// which may use upper or lower-case hex digits.
func ParseObjectID(s string) (ObjectID, error) {
	var id = ObjectID(strings.ToLower(strings.TrimSpace(s)))
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// IsValidObjectID returns true if |s| is a well-formed ObjectID.
func IsValidObjectID(s string) bool {
	var _, err = ParseObjectID(s)
	return err == nil
}

// Validate returns an error if the ObjectID is not well-formed.
func (id ObjectID) Validate() error {
	if len(id) != 24 {
		return NewValidationError("invalid object id (%q; expected 24 hex characters)", string(id))
	} else if _, err := hex.DecodeString(string(id)); err != nil {
		return NewValidationError("invalid object id (%q; expected 24 hex characters)", string(id))
	} else if strings.ToLower(string(id)) != string(id) {
		return NewValidationError("invalid object id (%q; expected lower-case hex)", string(id))
	}
	return nil
}

// Timestamp of the ObjectID's creation, at one-second resolution.
func (id ObjectID) Timestamp() time.Time {
	var b, err = hex.DecodeString(string(id))
	if err != nil || len(b) != 12 {
		return time.Time{}
	}
	return time.Unix(int64(binary.BigEndian.Uint32(b[0:4])), 0).UTC()
}

// String returns the ObjectID as a string.
func (id ObjectID) String() string { return string(id) }

var (
	processUnique   [5]byte
	objectIDCounter uint32
	timeNow         = time.Now
)

func init() {
	var seed [4]byte
	if _, err := rand.Read(processUnique[:]); err != nil {
		panic(err.Error())
	} else if _, err = rand.Read(seed[:]); err != nil {
		panic(err.Error())
	}
	objectIDCounter = binary.BigEndian.Uint32(seed[:])
}
