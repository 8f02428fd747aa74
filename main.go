package main

var (
	GitCommit string
	GitTag    string
	BuildTime string
)

// @title       Books API
// @version     1.0
// @description CRUD service for books documents.
// @BasePath    /
func main() {
	Execute()
}
