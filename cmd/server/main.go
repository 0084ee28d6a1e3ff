package main

import "github.com/denverparsonswork-debug/dockside-helper/internal/app"

// @title           Dockside Helper API
// @version         1.0
// @description     Справочник клиентов для водителей + админка + вход с кодом на почту.
// @BasePath        /
func main() {
	app.Run()
}
