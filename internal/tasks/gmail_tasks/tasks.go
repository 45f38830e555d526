package gmail_tasks

import (
	"fmt"

	"github.com/teemow/flowspace/internal/engine"
	"github.com/teemow/flowspace/internal/gmail"
	"github.com/teemow/flowspace/internal/google"
	"github.com/teemow/flowspace/internal/instrumentation"
	"github.com/teemow/flowspace/internal/server"
	"github.com/teemow/flowspace/internal/tasks/common"
)

// getGmailClient retrieves or creates a Gmail client for the specified account
func getGmailClient(account string, sc *server.ServerContext) (*gmail.Client, error) {
	client := sc.GmailClientForAccount(account)
	if client == nil {
		if !gmail.HasTokenForAccount(account) {
			authURL := google.GetAuthURLForAccount(account)
			return nil, fmt.Errorf("no Google OAuth token for account %q; authorize via %s and run 'flowspace auth' with the code", account, authURL)
		}
		return nil, fmt.Errorf("failed to create Gmail client for account %s", account)
	}
	return client, nil
}

// Register adds all Gmail tasks to the registry.
func Register(registry *engine.Registry, sc *server.ServerContext) error {
	tasks := []engine.Task{
		{
			Name:        "gmail.list",
			Description: "List messages matching a Gmail search query",
			Func:        common.InstrumentedTask("gmail.list", instrumentation.ServiceGmail, instrumentation.OperationList, sc, listMessages(sc)),
		},
		{
			Name:        "gmail.get",
			Description: "Get a message including its body text",
			Func:        common.InstrumentedTask("gmail.get", instrumentation.ServiceGmail, instrumentation.OperationGet, sc, getMessage(sc)),
		},
		{
			Name:        "gmail.send",
			Description: "Send an email",
			Func:        common.InstrumentedTask("gmail.send", instrumentation.ServiceGmail, instrumentation.OperationSend, sc, sendEmail(sc)),
		},
		{
			Name:        "gmail.reply",
			Description: "Reply to an existing message in its thread",
			Func:        common.InstrumentedTask("gmail.reply", instrumentation.ServiceGmail, instrumentation.OperationSend, sc, replyToEmail(sc)),
		},
	}

	for _, task := range tasks {
		if err := registry.Register(task); err != nil {
			return fmt.Errorf("failed to register gmail tasks: %w", err)
		}
	}
	return nil
}
