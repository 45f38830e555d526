package chat_tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/teemow/flowspace/internal/chat"
	"github.com/teemow/flowspace/internal/engine"
	"github.com/teemow/flowspace/internal/instrumentation"
	"github.com/teemow/flowspace/internal/server"
	"github.com/teemow/flowspace/internal/tasks/common"
)

// Register adds all Chat tasks to the registry.
func Register(registry *engine.Registry, sc *server.ServerContext) error {
	tasks := []engine.Task{
		{
			Name:        "chat.post_webhook",
			Description: "Post a text message to a Google Chat space via incoming webhook",
			Func:        common.InstrumentedTask("chat.post_webhook", instrumentation.ServiceChat, instrumentation.OperationSend, sc, postWebhook(sc)),
		},
		{
			Name:        "chat.post_card",
			Description: "Post a card message to a Google Chat space via incoming webhook",
			Func:        common.InstrumentedTask("chat.post_card", instrumentation.ServiceChat, instrumentation.OperationSend, sc, postCard(sc)),
		},
	}

	for _, task := range tasks {
		if err := registry.Register(task); err != nil {
			return fmt.Errorf("failed to register chat tasks: %w", err)
		}
	}
	return nil
}

// getChatClient validates the webhook URL from the task input and returns a
// client for it.
func getChatClient(in engine.Input, sc *server.ServerContext) (*chat.Client, error) {
	webhookURL, err := common.RequiredString(in, "webhook_url")
	if err != nil {
		return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
	}

	client := sc.ChatClientForWebhook(webhookURL)
	if client == nil {
		err := fmt.Errorf("invalid Google Chat webhook URL")
		return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
	}
	return client, nil
}

func postWebhook(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		text, err := common.RequiredString(in, "text")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getChatClient(in, sc)
		if err != nil {
			return nil, err
		}

		var msg *chat.Message
		if threadKey := common.String(in, "thread_key"); threadKey != "" {
			msg, err = client.PostToThread(ctx, text, threadKey)
		} else {
			msg, err = client.PostMessage(ctx, text)
		}
		if err != nil {
			return nil, wrapChatError(err)
		}
		return engine.Output(msg.Variables()), nil
	}
}

func postCard(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		title, err := common.RequiredString(in, "title")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}
		text, err := common.RequiredString(in, "text")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getChatClient(in, sc)
		if err != nil {
			return nil, err
		}

		card := chat.NewCard(title, common.String(in, "subtitle"), text)
		msg, err := client.PostCard(ctx, card)
		if err != nil {
			return nil, wrapChatError(err)
		}
		return engine.Output(msg.Variables()), nil
	}
}

// wrapChatError maps retryable webhook failures to a retry hint so the
// orchestrator can back off on rate limits and server errors.
func wrapChatError(err error) error {
	if chat.IsRetryable(err) {
		return engine.NewTaskError(fmt.Errorf("failed to post chat message: %w", err)).
			WithRetryHint(5 * time.Second)
	}
	return fmt.Errorf("failed to post chat message: %w", err)
}
