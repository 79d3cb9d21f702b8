// Package storage provides the storage primitives used by the media scraper.
//
// The storage package handles:
//   - Creating output directories
//   - Listing the scrape directories under an output root
//   - Reading and writing text and binary files
//   - Removing files
//   - Hashing content with SHA-256
//
// The Adapter interface is what the scrape pipeline depends on. FileSystem is
// the local disk implementation selected at process start; its writes go to
// a temporary file in the target directory followed by a rename, so a crash
// never leaves a truncated manifest or media file behind.
//
// Usage:
//
//	fs := storage.NewFileSystem()
//	if err := fs.MkdirAll("output/example.com-1700000000000/media"); err != nil {
//	    log.Fatal(err)
//	}
//
//	data := []byte("...")
//	if err := fs.WriteBinary("output/.../media/1-logo.png", data); err != nil {
//	    log.Printf("Failed to save media: %v", err)
//	}
//	fmt.Println(storage.SHA256Hex(data))
package storage
