package models

import (
	"database/sql/driver"
	"encoding/json"
)

// Tickets is the list of ticket numbers on a purchase record.
// SQL backends keep it as a JSON array in a TEXT column.
type Tickets []int

// Scan implements sql.Scanner. A column that is not a JSON array of
// integers scans as an empty list.
func (t *Tickets) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	}

	var nums []int
	if len(raw) == 0 || json.Unmarshal(raw, &nums) != nil || nums == nil {
		*t = Tickets{}
		return nil
	}
	*t = nums
	return nil
}

// Value implements driver.Valuer
func (t Tickets) Value() (driver.Value, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// MarshalJSON keeps an empty list as [] instead of null
func (t Tickets) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int(t))
}
