package bracket

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ParticipantRef identifies a team or an individual registered for an event.
type ParticipantRef string

// ParticipantList is the seeded participant order of a draw, stored as a JSON array.
type ParticipantList []ParticipantRef

func (l ParticipantList) Value() (driver.Value, error) {
	if l == nil {
		l = ParticipantList{}
	}
	b, err := json.Marshal([]ParticipantRef(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ParticipantList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ParticipantList", src)
	}

	var refs []ParticipantRef
	if err := json.Unmarshal(raw, &refs); err != nil {
		return err
	}
	if len(refs) == 0 {
		refs = nil
	}
	*l = refs
	return nil
}
