package types

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
)

// InstanceUid uniquely identifies a running instance of an Agent.
type InstanceUid [16]byte

var ErrInvalidInstanceUid = errors.New("invalid instance uid")

// NewInstanceUid returns a new time-ordered instance uid.
func NewInstanceUid() InstanceUid {
	return InstanceUid(ulid.Make())
}

// InstanceUidFromBytes copies a 16-byte slice into an InstanceUid.
func InstanceUidFromBytes(b []byte) (InstanceUid, error) {
	var uid InstanceUid
	if len(b) != len(uid) {
		return uid, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidInstanceUid, len(b), len(uid))
	}
	copy(uid[:], b)
	return uid, nil
}

// ParseInstanceUid accepts the 32 character hex form returned by String and the 26
// character ULID form.
func ParseInstanceUid(s string) (InstanceUid, error) {
	switch len(s) {
	case 32:
		b, err := hex.DecodeString(s)
		if err != nil {
			return InstanceUid{}, fmt.Errorf("%w: %v", ErrInvalidInstanceUid, err)
		}
		return InstanceUidFromBytes(b)
	case ulid.EncodedSize:
		id, err := ulid.ParseStrict(s)
		if err != nil {
			return InstanceUid{}, fmt.Errorf("%w: %v", ErrInvalidInstanceUid, err)
		}
		return InstanceUid(id), nil
	}
	return InstanceUid{}, fmt.Errorf("%w: %q", ErrInvalidInstanceUid, s)
}

func (u InstanceUid) IsZero() bool {
	return u == InstanceUid{}
}

func (u InstanceUid) Bytes() []byte {
	return append([]byte(nil), u[:]...)
}

// String returns the uppercase hex form of the uid.
func (u InstanceUid) String() string {
	return strings.ToUpper(hex.EncodeToString(u[:]))
}
