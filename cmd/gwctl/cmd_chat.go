// Copyright (C) 2025 Antigravity (platform@antigravity.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/antigravity/edge-gateway/services/gateway/datatypes"
)

var chatConversationID string

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Send one unary chat request to the gateway",
	Args:  cobra.MinimumNArgs(1),
	Run:   runChatCommand,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check gateway liveness",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := http.Get(gatewayURL + "/health")
		if err != nil {
			log.Fatalf("Gateway unreachable: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		fmt.Printf("%s %s\n", resp.Status, strings.TrimSpace(string(body)))
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatConversationID, "conversation", "", "Conversation ID to continue (default: new)")
}

func runChatCommand(cmd *cobra.Command, args []string) {
	question := strings.Join(args, " ")
	conversationID := chatConversationID
	if conversationID == "" {
		conversationID = uuid.New().String()
	}

	payload, err := json.Marshal(datatypes.ChatRequest{
		Query:          question,
		ConversationID: conversationID,
	})
	if err != nil {
		log.Fatalf("Failed to encode request: %v", err)
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}
	resp, err := httpClient.Post(gatewayURL+"/api/agent/chat", "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Fatalf("Gateway answered %s: %s", resp.Status, string(body))
	}

	var reply datatypes.WireChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		log.Fatalf("Failed to decode response: %v", err)
	}

	fmt.Printf("Conversation: %s\n---\n%s\n", conversationID, reply.Response)
	if len(reply.Reasoning) > 0 {
		fmt.Println("\nReasoning:")
		for _, step := range reply.Reasoning {
			fmt.Printf("%d. [%s] %s\n", step.Step, step.Type, step.Content)
		}
	}
	if len(reply.Citations) > 0 {
		fmt.Println("\nCitations:")
		for i, c := range reply.Citations {
			fmt.Printf("%d. %s\n", i+1, c)
		}
	}
}
