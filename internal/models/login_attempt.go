package models

import "time"

// LoginAttempt — одна отклонённая попытка входа/проверки кода.
// Identifier — строка, которую прислал клиент (обычно email), без привязки
// к drivers.id: лимитируем и те адреса, которых у нас нет.
type LoginAttempt struct {
	ID          int64     `json:"id"`
	Identifier  string    `json:"identifier"`
	AttemptTime time.Time `json:"attempt_time"`
	CreatedAt   time.Time `json:"created_at"`
}
