package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ExtraData is the opaque kind-specific payload carried by every relation
// record. The relation store never branches on its contents.
type ExtraData map[string]any

func (e *ExtraData) Scan(src any) error {
	if src == nil {
		*e = nil
		return nil
	}
	// src is a []byte from pq
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("ExtraData.Scan: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, e)
}

func (e ExtraData) Value() (driver.Value, error) {
	if e == nil {
		return json.Marshal(map[string]any{})
	}
	return json.Marshal(map[string]any(e))
}
