package models

import "time"

// Customer — запись в справочнике для водителей: куда ехать и кому звонить.
type Customer struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	GateNotes string    `json:"gate_notes"` // код ворот, docks, особенности разгрузки
	CreatedAt time.Time `json:"created_at"`
}
