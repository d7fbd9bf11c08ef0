//go:build ignore

// request_import публикует запрос импорта в stream и ждет событие завершения.
//
//	go run scripts/request_import.go -source stuttgart -kind static
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/parking-aggregator/internal/domain"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	sourceUID := flag.String("source", "", "source uid")
	kind := flag.String("kind", string(domain.ImportKindStatic), "static or realtime")
	wait := flag.Duration("wait", 5*time.Minute, "how long to wait for the done event")
	flag.Parse()

	if *sourceUID == "" {
		log.Fatal("-source is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	data, err := json.Marshal(domain.ImportRequestEvent{
		SourceUID: *sourceUID,
		Kind:      domain.ImportKind(*kind),
	})
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// ждем только события, опубликованные после запроса
	lastID := "$"
	if last, err := client.XRevRangeN(ctx, domain.StreamImportDone, "+", "-", 1).Result(); err == nil && len(last) > 0 {
		lastID = last[0].ID
	}

	id, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamImportRequest,
		Values: map[string]interface{}{"data": string(data)},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish request: %v", err)
	}
	fmt.Printf("Request published: stream=%s id=%s source=%s kind=%s\n",
		domain.StreamImportRequest, id, *sourceUID, *kind)

	deadline := time.Now().Add(*wait)
	for time.Now().Before(deadline) {
		results, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{domain.StreamImportDone, lastID},
			Count:   10,
			Block:   time.Second,
		}).Result()
		if err != nil && err != redis.Nil {
			log.Fatalf("Failed to read done stream: %v", err)
		}

		for _, stream := range results {
			for _, msg := range stream.Messages {
				lastID = msg.ID

				raw, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}
				var event domain.ImportDoneEvent
				if err := json.Unmarshal([]byte(raw), &event); err != nil {
					continue
				}
				if event.SourceUID != *sourceUID || string(event.Report.Kind) != *kind {
					continue
				}

				pretty, _ := json.MarshalIndent(event, "", "  ")
				fmt.Printf("Import finished:\n%s\n", pretty)
				return
			}
		}
	}

	fmt.Println("Timeout waiting for import done event")
}
