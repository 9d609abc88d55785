package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	addUser     int64
	addNoWait   bool
	replaceUser int64
	deleteUser  int64
	ingestWait  bool
	docsOffset  int
	docsLimit   int
)

var addCmd = &cobra.Command{
	Use:   "add [file...]",
	Short: "Upload documents and index them",
	Long: `Copies each file into the upload directory and runs the ingestion pipeline:
text extraction, chunking, embedding and indexing.

Supported formats are PDF, DOCX, TXT and Markdown. By default the command waits
for ingestion to finish and reports each document's final status.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var replaceCmd = &cobra.Command{
	Use:   "replace [doc-id] [file]",
	Short: "Replace a document's file and re-index it",
	Long: `Stores the new file, bumps the document's version and re-runs ingestion.
A document that is being ingested cannot be replaced until the run finishes.`,
	Args: cobra.ExactArgs(2),
	RunE:  runReplace,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [doc-id]",
	Short: "Re-run ingestion for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

var jobsCmd = &cobra.Command{
	Use:   "jobs [doc-id]",
	Short: "List ingestion jobs for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobs,
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage uploaded documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents, newest first",
	RunE:  runDocsList,
}

var docsShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsShow,
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its stored file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsDelete,
}

var docsHistoryCmd = &cobra.Command{
	Use:   "history [doc-id]",
	Short: "Show a document's uploads, replacements and deletion",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsHistory,
}

func init() {
	addCmd.Flags().Int64VarP(&addUser, "user", "u", 1, "owner user ID")
	addCmd.Flags().BoolVar(&addNoWait, "no-wait", false, "return once documents are queued")
	replaceCmd.Flags().Int64VarP(&replaceUser, "user", "u", 1, "user making the change")
	docsDeleteCmd.Flags().Int64VarP(&deleteUser, "user", "u", 1, "user making the change")
	ingestCmd.Flags().BoolVarP(&ingestWait, "wait", "w", false, "wait for ingestion to finish")
	docsListCmd.Flags().IntVar(&docsOffset, "offset", 0, "number of documents to skip")
	docsListCmd.Flags().IntVarP(&docsLimit, "limit", "n", 50, "maximum number of documents")

	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsShowCmd)
	docsCmd.AddCommand(docsDeleteCmd)
	docsCmd.AddCommand(docsHistoryCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(replaceCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(docsCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	ctx := cmd.Context()
	var added []*domain.Document
	var failed int
	for _, path := range args {
		doc, err := documentService.Upload(ctx, path, addUser)
		if err != nil {
			failed++
			cmd.PrintErrf("  %s: %v\n", path, err)
			continue
		}
		added = append(added, doc)
		cmd.Printf("Uploaded %s as document %d\n", doc.Filename, doc.ID)
	}

	if !addNoWait && len(added) > 0 {
		cmd.Println("Indexing...")
		ingestionService.Wait()
		for _, doc := range added {
			current, err := documentService.Get(ctx, doc.ID)
			if err != nil {
				return fmt.Errorf("failed to get document: %w", err)
			}
			cmd.Printf("  [%d] %s: %s\n", current.ID, current.Filename, current.Status)
			if current.Status == domain.StatusError {
				failed++
				printLastJobError(cmd, current.ID)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(args))
	}
	return nil
}

func runReplace(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	id, err := parseDocumentID(args[0])
	if err != nil {
		return err
	}

	doc, err := documentService.Replace(cmd.Context(), id, args[1], replaceUser)
	if err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}

	cmd.Printf("Document %d replaced with %s (version %d)\n", doc.ID, doc.Filename, doc.Version)
	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	id, err := parseDocumentID(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if !ingestWait {
		job, err := ingestionService.Ingest(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to queue ingestion: %w", err)
		}
		cmd.Printf("Queued job %s for document %d\n", job.ID, id)
		return nil
	}

	job, err := ingestionService.IngestSync(ctx, id)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	printJob(cmd, job)
	if job.Status == domain.JobFailed {
		return fmt.Errorf("ingestion failed: %s", job.Error)
	}
	return nil
}

func runJobs(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	id, err := parseDocumentID(args[0])
	if err != nil {
		return err
	}

	jobs, err := ingestionService.Jobs(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}
	if len(jobs) == 0 {
		cmd.Printf("No jobs found for document %d\n", id)
		return nil
	}

	cmd.Printf("Jobs for document %d:\n\n", id)
	for i := range jobs {
		printJob(cmd, &jobs[i])
		cmd.Println()
	}
	return nil
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context(), docsOffset, docsLimit)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  [%d] %s\n", docs[i].ID, docs[i].Filename)
		cmd.Printf("      Status: %s  Version: %d  Uploaded: %s\n",
			docs[i].Status, docs[i].Version, docs[i].UploadedAt.Format(timeLayout))
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	id, err := parseDocumentID(args[0])
	if err != nil {
		return err
	}

	doc, err := documentService.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %d\n\n", doc.ID)
	cmd.Printf("  Filename: %s\n", doc.Filename)
	cmd.Printf("  Path:     %s\n", doc.Path)
	cmd.Printf("  Owner:    %d\n", doc.OwnerID)
	cmd.Printf("  Status:   %s\n", doc.Status)
	cmd.Printf("  Version:  %d\n", doc.Version)
	cmd.Printf("  Uploaded: %s\n", doc.UploadedAt.Format(timeLayout))
	cmd.Printf("  Updated:  %s\n", doc.UpdatedAt.Format(timeLayout))
	if doc.Status == domain.StatusError {
		printLastJobError(cmd, doc.ID)
	}
	return nil
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	id, err := parseDocumentID(args[0])
	if err != nil {
		return err
	}

	if err := documentService.Delete(cmd.Context(), id, deleteUser); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %d deleted.\n", id)
	return nil
}

func runDocsHistory(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	id, err := parseDocumentID(args[0])
	if err != nil {
		return err
	}

	changes, err := documentService.History(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to read document history: %w", err)
	}
	if len(changes) == 0 {
		cmd.Printf("No history recorded for document %d\n", id)
		return nil
	}

	cmd.Printf("History for document %d:\n\n", id)
	for i := range changes {
		c := &changes[i]
		cmd.Printf("  [%s] v%d %s by user %d\n", c.Timestamp.Format(timeLayout), c.Version, c.ChangeType, c.ChangedBy)
		if c.Details != "" {
			cmd.Printf("      %s\n", c.Details)
		}
	}
	return nil
}

func printJob(cmd *cobra.Command, job *domain.IngestJob) {
	cmd.Printf("  Job %s\n", job.ID)
	cmd.Printf("    Status:  %s\n", job.Status)
	cmd.Printf("    Created: %s\n", job.CreatedAt.Format(timeLayout))
	if job.Status == domain.JobSucceeded {
		cmd.Printf("    Chunks:  %d\n", job.ChunkCount)
	}
	if d := job.Duration(); d > 0 {
		cmd.Printf("    Took:    %s\n", d)
	}
	if job.Error != "" {
		cmd.Printf("    Error:   [%s] %s\n", job.ErrorKind, job.Error)
	}
}

// printLastJobError prints why the document's most recent job failed.
func printLastJobError(cmd *cobra.Command, id int64) {
	if ingestionService == nil {
		return
	}
	jobs, err := ingestionService.Jobs(cmd.Context(), id)
	if err != nil || len(jobs) == 0 || jobs[0].Error == "" {
		return
	}
	cmd.Printf("      %s: %s\n", jobs[0].ErrorKind, jobs[0].Error)
}

func parseDocumentID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid document ID %q", arg)
	}
	return id, nil
}
