package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"google.golang.org/genai"

	"github.com/FACorreiaa/gezi-ai/config"
	"github.com/FACorreiaa/gezi-ai/internal/api/destination"
	generativeAI "github.com/FACorreiaa/gezi-ai/internal/api/generative_ai"
	"github.com/FACorreiaa/gezi-ai/internal/types"
)

var place = flag.String("place", "İstanbul", "the place to generate a narrative for")

// streams the destination narrative for -place, then prints how it was sectioned
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}
	flag.Parse()

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Error initializing config: %v", err)
	}

	ctx := context.Background()
	client, err := generativeAI.NewAIClient(ctx, generativeAI.ClientConfig{
		APIKey:  cfg.Upstreams.Gemini.APIKey,
		Model:   cfg.Upstreams.Gemini.Model,
		BaseURL: cfg.Upstreams.Gemini.BaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	fmt.Println("Calling", client.Model(), "for", *place)

	stream, err := client.GenerateContentStream(ctx, generativeAI.DestinationPrompt(*place), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(cfg.Upstreams.Gemini.Temperature),
	})
	if err != nil {
		log.Fatal(err)
	}

	var text strings.Builder
	for chunk, err := range stream {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Print(chunk.Text())
		text.WriteString(chunk.Text())
	}
	fmt.Println()

	parsed := destination.ParseNarrative(text.String())
	fmt.Println("\n--- sections ---")
	for _, slot := range types.SectionSlots {
		s := parsed.Section(slot)
		if s == nil {
			fmt.Printf("%-20s missing\n", slot)
			continue
		}
		fmt.Printf("%-20s %q (%d items)\n", slot, s.Title, len(s.Items))
	}
	for _, miss := range parsed.Misses {
		log.Println(miss.Error())
	}
}
