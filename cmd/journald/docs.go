package main

//go:generate swag init -g cmd/journald/main.go -o docs

// @title           Investment Journal API
// @version         0.1.0
// @description     Journals, partial sells, archival and review history.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
