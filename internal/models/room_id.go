package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
)

var ErrInvalidRoomID = errors.New("roomId must be a string or a number")

// RoomID is an opaque room identifier. Clients may send it as a JSON string or
// number; both forms normalise to the same value, so "1" and 1 name one room.
type RoomID string

func (r *RoomID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ErrInvalidRoomID
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RoomID(s)
		return nil
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return ErrInvalidRoomID
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		*r = RoomID(strconv.FormatInt(int64(f), 10))
		return nil
	}
	*r = RoomID(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// MarshalJSON emits ids in canonical integer form ("7", "-3") as JSON numbers
// and anything else, "007" or "+5" included, as a string so it decodes back to
// the same RoomID.
func (r RoomID) MarshalJSON() ([]byte, error) {
	if n, ok := r.Int(); ok {
		if canonical := strconv.FormatInt(n, 10); canonical == string(r) {
			return []byte(canonical), nil
		}
	}
	return json.Marshal(string(r))
}

func (r RoomID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(r), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (r RoomID) String() string {
	return string(r)
}
