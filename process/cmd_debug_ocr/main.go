package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"notesapp/pkg/ocr"
)

func main() {
	f := pflag.String("file", "", "image file to OCR")
	langs := pflag.StringSlice("lang", []string{"eng"}, "tesseract languages")
	pflag.Parse()
	if *f == "" {
		log.Fatalf("--file required")
	}
	data, err := os.ReadFile(*f)
	if err != nil {
		log.Fatalf("read: %v", err)
	}
	l, _ := zap.NewDevelopment()
	text, err := ocr.New(l, *langs...).Extract(context.Background(), data)
	if err != nil {
		log.Fatalf("ocr error: %v", err)
	}
	fmt.Printf("chars=%d\n%s\n", len(text), text)
}
