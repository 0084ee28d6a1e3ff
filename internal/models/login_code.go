package models

import "time"

// LoginCode — одноразовый код для входа, отправляется на почту.
// Активным считается ровно один код на водителя: used=false и срок не вышел;
// это обеспечивается процедурно (invalidate перед insert), не констрейнтом.
type LoginCode struct {
	ID        int64     `json:"id"`
	DriverID  int       `json:"driver_id"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}
