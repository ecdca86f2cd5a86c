package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go-onboard/internal/config"
	"go-onboard/internal/llm"
	"go-onboard/internal/onboarding"
)

// offlineOracle forces the canned question bank, useful for exercising the
// dialogue without a model server.
type offlineOracle struct{}

func (offlineOracle) Complete(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("offline mode")
}

func main() {
	urlFlag := flag.String("url", "", "chat completions endpoint (empty = offline mode)")
	modelFlag := flag.String("model", "llama3", "model name")
	flag.Parse()

	var completer llm.Completer
	if *urlFlag == "" {
		fmt.Println("No oracle URL given; running offline on the canned question bank.")
		completer = offlineOracle{}
	} else {
		breaker := llm.NewCircuitBreaker(5, 30*time.Second)
		manager := llm.NewManager(8, 2, breaker)
		defer manager.Stop()
		client := llm.NewClient(manager, 60*time.Second)
		completer = llm.NewOracle(client, config.OracleConfig{Model: *modelFlag, URL: *urlFlag})
	}

	engine := onboarding.NewEngine(completer, onboarding.EngineConfig{})
	question, err := engine.Start()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("\nAnna: %s\n", question.Text)
		if len(question.Choices) > 0 {
			for i, choice := range question.Choices {
				fmt.Printf("  %d. %s\n", i+1, choice)
			}
		}
		fmt.Print("You: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("\nBye!")
			return
		}
		answer := strings.TrimSpace(line)
		if answer == "" {
			continue
		}

		result, err := engine.SubmitAnswer(context.Background(), question.ID, answer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		if result.Closing != nil {
			fmt.Printf("\nAnna: %s\n\n", result.Closing.Message)
			pretty, _ := json.MarshalIndent(result.Closing.Profile, "", "  ")
			fmt.Printf("Collected profile:\n%s\n", pretty)
			fmt.Printf("Turns: %d, collected goals: %v\n", len(engine.Turns()), engine.CollectedKeys())
			return
		}
		question = *result.Question
	}
}
