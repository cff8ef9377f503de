//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kapu/speech-archive-go/internal/service/speech"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run test_speech_api.go <audio.mp3>")
		return
	}
	audioPath := os.Args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	client, err := speech.NewClient(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to create speech client", zap.Error(err))
	}
	defer client.Close()

	fmt.Printf("Recognizing %s...\n\n", audioPath)

	result, err := client.Recognize(ctx, "manual-test", audioPath)
	if err != nil {
		fmt.Printf("❌ Error: %v\n", err)
		return
	}

	fmt.Printf("✅ Transcript: %d chars\n", len(result.FullText))
	if len(result.FullText) > 200 {
		fmt.Printf("   %s...\n", result.FullText[:200])
	} else {
		fmt.Printf("   %s\n", result.FullText)
	}

	fmt.Printf("\n✅ %d timed segments\n", len(result.Segments))
	for i, seg := range result.Segments {
		if i >= 3 {
			fmt.Println("   ...")
			break
		}
		fmt.Printf("   [%.1f-%.1f] %s\n", seg.Start, seg.End, seg.Text)
	}

	fmt.Printf("\n✅ %d speaker turns\n", len(result.Turns))
	for i, turn := range result.Turns {
		if i >= 5 {
			fmt.Println("   ...")
			break
		}
		fmt.Printf("   [%.1f-%.1f] %s\n", turn.Start, turn.End, turn.Speaker)
	}
}
