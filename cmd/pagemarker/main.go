package main

import "page-marker/internal/bootstrap"

func main() {
	bootstrap.NewApp().Run()
}
