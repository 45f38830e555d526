package gmail_tasks

import (
	"context"
	"fmt"

	"github.com/teemow/flowspace/internal/engine"
	"github.com/teemow/flowspace/internal/gmail"
	"github.com/teemow/flowspace/internal/server"
	"github.com/teemow/flowspace/internal/tasks/common"
)

func listMessages(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)
		query := common.String(in, "query")
		maxResults := common.Int64(in, "max_results", 25)

		client, err := getGmailClient(account, sc)
		if err != nil {
			return nil, err
		}

		messages, err := client.ListMessages(ctx, query, maxResults)
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		items := make([]map[string]any, len(messages))
		for i, msg := range messages {
			items[i] = msg.Variables()
		}
		return engine.Output{"messages": items, "count": len(items)}, nil
	}
}

func getMessage(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)

		messageID, err := common.RequiredString(in, "message_id")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getGmailClient(account, sc)
		if err != nil {
			return nil, err
		}

		summary, err := client.GetMessageSummary(ctx, messageID)
		if err != nil {
			return nil, fmt.Errorf("failed to get message: %w", err)
		}
		return engine.Output(summary.Variables()), nil
	}
}

func sendEmail(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)

		to := common.Strings(in, "to")
		if len(to) == 0 {
			return nil, engine.NewTaskError(fmt.Errorf("to is required")).WithType(engine.ErrorTypeUserError)
		}
		subject, err := common.RequiredString(in, "subject")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}
		body, err := common.RequiredString(in, "body")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getGmailClient(account, sc)
		if err != nil {
			return nil, err
		}

		messageID, err := client.SendEmail(ctx, &gmail.EmailMessage{
			To:      to,
			Cc:      common.Strings(in, "cc"),
			Bcc:     common.Strings(in, "bcc"),
			Subject: subject,
			Body:    body,
			IsHTML:  common.Bool(in, "html"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to send email: %w", err)
		}
		return engine.Output{"message_id": messageID, "sent": true}, nil
	}
}

func replyToEmail(sc *server.ServerContext) engine.TaskFunc {
	return func(ctx context.Context, exec *engine.Execution, in engine.Input) (engine.Output, error) {
		account := common.Account(exec, in)

		messageID, err := common.RequiredString(in, "message_id")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}
		body, err := common.RequiredString(in, "body")
		if err != nil {
			return nil, engine.NewTaskError(err).WithType(engine.ErrorTypeUserError)
		}

		client, err := getGmailClient(account, sc)
		if err != nil {
			return nil, err
		}

		replyID, err := client.ReplyToEmail(ctx, messageID, body, common.Bool(in, "html"))
		if err != nil {
			return nil, fmt.Errorf("failed to reply to message: %w", err)
		}
		return engine.Output{"message_id": replyID, "in_reply_to": messageID, "sent": true}, nil
	}
}
