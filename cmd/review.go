package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dobby152/askelio-sub001/internal/model"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Edit, approve or reject documents awaiting review",
}

var reviewEditCmd = &cobra.Command{
	Use:   "edit <document-id> <field-id> <value>",
	Short: "Override a field value",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDocument(cmd, args[0], func(env *pipelineEnv, doc *model.Document) error {
			return env.Review.EditField(doc, args[1], args[2])
		})
	},
}

var reviewApproveCmd = &cobra.Command{
	Use:   "approve <document-id>",
	Short: "Approve a document, making it read-only",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDocument(cmd, args[0], func(env *pipelineEnv, doc *model.Document) error {
			env.Pipeline.CancelEnrichment(doc.ID)
			return env.Review.Approve(doc)
		})
	},
}

var reviewRejectCmd = &cobra.Command{
	Use:   "reject <document-id>",
	Short: "Send a document back for correction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDocument(cmd, args[0], func(env *pipelineEnv, doc *model.Document) error {
			return env.Review.Reject(doc)
		})
	},
}

// withDocument loads a document, applies the review command, saves it and
// prints the updated record.
func withDocument(cmd *cobra.Command, docID string, fn func(*pipelineEnv, *model.Document) error) error {
	ctx := cmd.Context()

	env, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	doc, err := env.Store.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	if err := fn(env, doc); err != nil {
		return err
	}
	if err := env.Store.UpdateDocument(ctx, doc); err != nil {
		return err
	}

	zap.L().Info("review command applied",
		zap.String("document_id", doc.ID),
		zap.String("status", string(doc.Status)),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func init() {
	reviewCmd.AddCommand(reviewEditCmd, reviewApproveCmd, reviewRejectCmd)
	rootCmd.AddCommand(reviewCmd)
}
