// Command imessagectl extracts message history from a macOS Messages
// database (chat.db) into JSON that the profile API accepts.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vibecheck-app/vibecheck/internal/imessage"
)

var (
	dbPath     string
	outputPath string
	contact    string
	chatID     int64
	limit      int
)

func main() {
	root := &cobra.Command{
		Use:           "imessagectl",
		Short:         "Extract iMessage history for vibecheck profiles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "./chat.db", "path to chat.db")
	root.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "write JSON to file instead of stdout")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the message database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withExtractor(func(e *imessage.Extractor) (any, error) {
				return e.GetStats()
			})
		},
	}

	chatsCmd := &cobra.Command{
		Use:   "chats",
		Short: "List chat threads with participants",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withExtractor(func(e *imessage.Extractor) (any, error) {
				return e.Chats()
			})
		},
	}

	contactsCmd := &cobra.Command{
		Use:   "contacts",
		Short: "List contact handles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withExtractor(func(e *imessage.Extractor) (any, error) {
				return e.Contacts()
			})
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export <contact>",
		Short: "Export the full 1-on-1 conversation with a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withExtractor(func(e *imessage.Extractor) (any, error) {
				return e.GetConversation(args[0])
			})
		},
	}

	mytextsCmd := &cobra.Command{
		Use:   "mytexts",
		Short: "Export texts you sent as a JSON array for profile upload",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withExtractor(func(e *imessage.Extractor) (any, error) {
				msgs, err := e.MyTexts(imessage.Query{
					Contact: contact,
					ChatID:  chatID,
					Limit:   limit,
				})
				if err != nil {
					return nil, err
				}
				texts := make([]string, 0, len(msgs))
				for _, m := range msgs {
					texts = append(texts, m.Text)
				}
				return texts, nil
			})
		},
	}
	mytextsCmd.Flags().StringVar(&contact, "contact", "", "filter by contact phone/email")
	mytextsCmd.Flags().Int64Var(&chatID, "chat", 0, "filter by chat id")
	mytextsCmd.Flags().IntVar(&limit, "limit", 0, "maximum messages to export")

	root.AddCommand(statsCmd, chatsCmd, contactsCmd, exportCmd, mytextsCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func withExtractor(fn func(*imessage.Extractor) (any, error)) error {
	extractor, err := imessage.Open(dbPath)
	if err != nil {
		return err
	}
	defer extractor.Close()

	result, err := fn(extractor)
	if err != nil {
		return err
	}
	return writeJSON(result)
}

func writeJSON(v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	payload = append(payload, '\n')

	if outputPath == "" {
		_, err = os.Stdout.Write(payload)
		return err
	}
	if err := os.WriteFile(outputPath, payload, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	fmt.Fprintf(os.Stderr, "Exported to %s\n", outputPath)
	return nil
}
