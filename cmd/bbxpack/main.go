// Command bbxpack packs yaml box templates into a bbx catalog.
//
//	bbxpack -out prefabs/kitchen.bbx prefabs/boxes.yaml [more.yaml ...]
package main

import (
	"bytes"
	"flag"
	"log"
	"os"
)

func main() {
	out := flag.String("out", "kitchen.bbx", "output bbx file")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("bbxpack: no input files")
	}

	var buf bytes.Buffer
	n, err := pack(flag.Args(), &buf)
	if err != nil {
		log.Fatalf("bbxpack: %v", err)
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		log.Fatalf("bbxpack: write %s: %v", *out, err)
	}
	log.Printf("bbxpack: wrote %d boxes to %s", n, *out)
}
