// Copyright (C) 2025 Antigravity (platform@antigravity.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/antigravity/edge-gateway/services/gateway/datatypes"
)

var streamCmd = &cobra.Command{
	Use:   "stream [question]",
	Short: "Run one streaming turn and print frames as they arrive",
	Args:  cobra.MinimumNArgs(1),
	Run:   runStreamCommand,
}

func runStreamCommand(cmd *cobra.Command, args []string) {
	question := strings.Join(args, " ")

	wsURL := strings.Replace(gatewayURL, "http", "ws", 1) + "/ws/agent/stream"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", wsURL, err)
	}
	defer ws.Close()

	req := datatypes.StreamRequest{
		Query:          question,
		ConversationID: uuid.New().String(),
	}
	payload, err := json.Marshal(req)
	if err != nil {
		log.Fatalf("Failed to encode request: %v", err)
	}
	if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Fatalf("Failed to send request: %v", err)
	}

	for {
		ws.SetReadDeadline(time.Now().Add(2 * time.Minute))
		var frame datatypes.StreamFrame
		if err := ws.ReadJSON(&frame); err != nil {
			log.Fatalf("Stream read failed: %v", err)
		}

		switch frame.Type {
		case datatypes.FrameReasoning:
			if frame.Step != nil {
				fmt.Printf("[%s] %s\n", frame.Step.Type, frame.Step.Content)
			}
		case datatypes.FrameDelta:
			fmt.Print(frame.Delta)
			os.Stdout.Sync()
		case datatypes.FrameArtifact:
			if frame.Artifact != nil {
				fmt.Printf("\n--- artifact: %s (%s) ---\n", frame.Artifact.Title, frame.Artifact.Type)
			}
		case datatypes.FrameDone:
			fmt.Println()
			return
		case datatypes.FrameError:
			fmt.Println()
			log.Fatalf("Stream error: %s", frame.Message)
		}
	}
}
