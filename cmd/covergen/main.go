package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/coursehub/coursehub/internal/service"
)

// covergen renders placeholder course covers into the public directory.
// With no arguments it produces the default cover; any extra arguments are
// treated as course titles and rendered to numbered sample files for
// eyeballing the palette.
func main() {
	publicDir := flag.String("public", "public", "public directory to write covers into")
	width := flag.Int("width", 300, "cover width in pixels")
	height := flag.Int("height", 300, "cover height in pixels")
	flag.Parse()

	renderer := service.NewCoverRenderer(*width, *height)
	outDir := filepath.Join(*publicDir, "courses")

	defaultPath := filepath.Join(outDir, "default.png")
	if err := renderer.RenderToFile("Course", defaultPath); err != nil {
		fmt.Fprintf(os.Stderr, "covergen: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", defaultPath)

	for i, title := range flag.Args() {
		path := filepath.Join(outDir, fmt.Sprintf("sample-%d.png", i+1))
		if err := renderer.RenderToFile(title, path); err != nil {
			fmt.Fprintf(os.Stderr, "covergen: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", path)
	}
}
