package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/cli/output"
	"github.com/quarrylabs/quarry/pkg/core"
	"github.com/quarrylabs/quarry/pkg/storage"
)

// NewStorageCommand creates the storage command group.
func NewStorageCommand() *cobra.Command {
	var container string

	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Browse and manage object storage connections",
		Long: `Work with the active object storage connection (S3 or Azure Blob
Storage) through the gateway: list containers and objects, inspect
metadata, upload, presign, and delete.`,
		Example: `  quarry -c exports storage containers
  quarry -c exports storage ls --container backups reports/
  quarry -c exports storage put --container backups report.csv
  quarry -c exports storage rm --container backups --prefix tmp/ --yes`,
	}

	cmd.PersistentFlags().StringVar(&container, "container", "", "Container (bucket) to operate on")

	cmd.AddCommand(
		newStorageContainersCommand(),
		newStorageCreateContainerCommand(),
		newStorageLsCommand(&container),
		newStorageStatCommand(&container),
		newStoragePresignCommand(&container),
		newStoragePutCommand(&container),
		newStorageRmCommand(&container),
	)

	return cmd
}

// storageClientFor resolves the active connection and wraps it in a storage
// client. SQL connections are rejected here, before any wire call.
func storageClientFor(ctx *CommandContext) (*storage.Client, *core.Connection, error) {
	conn, err := ctx.Cfg.ResolveConnection("")
	if err != nil {
		return nil, nil, err
	}
	if conn.Storage == nil {
		return nil, nil, fmt.Errorf("connection %q is not a storage connection; see 'quarry query'", conn.ID)
	}
	return storage.New(ctx.Gateway, conn.ID, ctx.Logger), conn, nil
}

func requireContainer(container string) error {
	if container == "" {
		return fmt.Errorf("no container selected (use --container)")
	}
	return nil
}

func newStorageContainersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "containers",
		Short: "List containers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := NewCommandContext(cmd)
			client, _, err := storageClientFor(ctx)
			if err != nil {
				return err
			}

			containers, err := client.ListContainers(cmd.Context())
			if err != nil {
				return err
			}
			return renderContainers(ctx.Renderer, containers)
		},
	}
}

func newStorageCreateContainerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-container <name>",
		Short: "Create a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewCommandContext(cmd)
			client, _, err := storageClientFor(ctx)
			if err != nil {
				return err
			}

			created, err := client.CreateContainer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ctx.Renderer.Success(fmt.Sprintf("container %q created", created.Name))
			return nil
		},
	}
}

func newStorageLsCommand(container *string) *cobra.Command {
	var recursive bool
	var all bool
	var maxKeys int

	cmd := &cobra.Command{
		Use:   "ls [prefix]",
		Short: "List objects in a container",
		Long: `List objects under a prefix. By default "/" groups keys into
virtual folders; --recursive lists every key under the prefix instead.
Listings are paged; --all follows continuation tokens to the end.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewCommandContext(cmd)
			client, _, err := storageClientFor(ctx)
			if err != nil {
				return err
			}
			if err := requireContainer(*container); err != nil {
				return err
			}

			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}

			delimiter := "/"
			if recursive {
				delimiter = ""
			}

			prefixes, objects, truncated, err := collectListing(cmd.Context(), client, *container, prefix, delimiter, maxKeys, all)
			if err != nil {
				return err
			}
			return renderObjects(ctx.Renderer, prefixes, objects, truncated)
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Do not group keys into folders")
	cmd.Flags().BoolVar(&all, "all", false, "Follow pagination to the end of the listing")
	cmd.Flags().IntVar(&maxKeys, "max-keys", 0, "Page size (0 lets the backend choose)")

	return cmd
}

// collectListing pages through an object listing. With followAll it chases
// continuation tokens to the end; otherwise it stops after the first page
// and reports whether more was left behind.
func collectListing(ctx context.Context, client *storage.Client, container, prefix, delimiter string, maxKeys int, followAll bool) ([]string, []core.StorageObject, bool, error) {
	var prefixes []string
	var objects []core.StorageObject

	token := ""
	for {
		page, err := client.ListObjects(ctx, container, storage.ListOptions{
			Prefix:            prefix,
			Delimiter:         delimiter,
			MaxKeys:           maxKeys,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, nil, false, err
		}
		prefixes = append(prefixes, page.Prefixes...)
		objects = append(objects, page.Objects...)

		if !page.IsTruncated {
			return prefixes, objects, false, nil
		}
		if !followAll || page.ContinuationToken == "" {
			return prefixes, objects, true, nil
		}
		token = page.ContinuationToken
	}
}

func newStorageStatCommand(container *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <key>",
		Short: "Show an object's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewCommandContext(cmd)
			client, _, err := storageClientFor(ctx)
			if err != nil {
				return err
			}
			if err := requireContainer(*container); err != nil {
				return err
			}

			details, err := client.GetObjectDetails(cmd.Context(), *container, args[0])
			if err != nil {
				return err
			}
			return renderObjectDetails(ctx.Renderer, details)
		},
	}
}

func newStoragePresignCommand(container *string) *cobra.Command {
	var expiresIn time.Duration

	cmd := &cobra.Command{
		Use:   "presign <key>",
		Short: "Create a time-limited download URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewCommandContext(cmd)
			client, _, err := storageClientFor(ctx)
			if err != nil {
				return err
			}
			if err := requireContainer(*container); err != nil {
				return err
			}

			url, err := client.GetPresignedURL(cmd.Context(), *container, args[0], expiresIn)
			if err != nil {
				return err
			}
			// Bare URL so the output pipes cleanly
			ctx.Renderer.Println(url)
			return nil
		},
	}

	cmd.Flags().DurationVar(&expiresIn, "expires", 15*time.Minute, "How long the URL stays valid")

	return cmd
}

func newStoragePutCommand(container *string) *cobra.Command {
	return &cobra.Command{
		Use:   "put <file> [key]",
		Short: "Upload a file",
		Long:  `Upload a local file. The key defaults to the file's base name.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewCommandContext(cmd)
			client, _, err := storageClientFor(ctx)
			if err != nil {
				return err
			}
			if err := requireContainer(*container); err != nil {
				return err
			}

			file := args[0]
			key := filepath.Base(file)
			if len(args) == 2 {
				key = args[1]
			}

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", file, err)
			}
			defer func() { _ = f.Close() }()

			var size int64
			if fi, err := f.Stat(); err == nil {
				size = fi.Size()
			}

			spinner := ctx.Renderer.NewSpinner(fmt.Sprintf("uploading %s", key))
			spinner.Start()
			if err := client.UploadObject(cmd.Context(), *container, key, f); err != nil {
				spinner.Fail(fmt.Sprintf("upload of %s failed", key))
				return err
			}
			spinner.Success(fmt.Sprintf("uploaded %s (%s)", key, humanize.IBytes(uint64(size))))
			return nil
		},
	}
}

func newStorageRmCommand(container *string) *cobra.Command {
	var prefix string
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm [keys...]",
		Short: "Delete objects",
		Long: `Delete the given keys, or with --prefix every object under a prefix.

Prefix deletion pages through the listing and batch-deletes as it goes;
if it fails mid-way it reports how many objects were already deleted.`,
		Example: `  quarry storage rm --container exports reports/2025.csv
  quarry storage rm --container exports --prefix tmp/ --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewCommandContext(cmd)
			client, _, err := storageClientFor(ctx)
			if err != nil {
				return err
			}
			if err := requireContainer(*container); err != nil {
				return err
			}

			if prefix == "" && len(args) == 0 {
				return fmt.Errorf("nothing to delete: pass keys or --prefix")
			}
			if prefix != "" && len(args) > 0 {
				return fmt.Errorf("pass either keys or --prefix, not both")
			}

			if prefix != "" {
				if !yes {
					ok, err := confirm(cmd, fmt.Sprintf("Delete every object under %q in container %q?", prefix, *container))
					if err != nil {
						return err
					}
					if !ok {
						ctx.Renderer.Println("Aborted.")
						return nil
					}
				}

				deleted, err := client.DeletePrefix(cmd.Context(), *container, prefix)
				if err != nil {
					return fmt.Errorf("deleted %d objects before failing: %w", deleted, err)
				}
				ctx.Renderer.Success(fmt.Sprintf("deleted %d objects under %q", deleted, prefix))
				return nil
			}

			if err := client.DeleteObjects(cmd.Context(), *container, args); err != nil {
				return err
			}
			label := fmt.Sprintf("deleted %d objects", len(args))
			if len(args) == 1 {
				label = fmt.Sprintf("deleted %q", args[0])
			}
			ctx.Renderer.Success(label)
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Delete every object under this prefix")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// confirm asks a yes/no question on the terminal. A non-interactive stdin
// refuses instead of guessing; scripts pass --yes.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	if !isTerminal(os.Stdin) {
		return false, fmt.Errorf("refusing to delete without --yes when stdin is not a terminal")
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func renderContainers(r *output.Renderer, containers []core.Container) error {
	if r.EffectiveMode() == output.ModeJSON {
		if containers == nil {
			containers = []core.Container{}
		}
		return r.JSON(containers)
	}

	if len(containers) == 0 {
		r.Println("No containers found.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Out())
	t.AppendHeader(table.Row{"name", "created"})
	for _, c := range containers {
		created := "-"
		if !c.CreatedAt.IsZero() {
			created = c.CreatedAt.Format("2006-01-02 15:04")
		}
		t.AppendRow(table.Row{c.Name, created})
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		t.Style().Format.Header = text.FormatDefault
		t.RenderMarkdown()
		return nil
	}
	t.SetStyle(table.StyleLight)
	t.Render()

	label := fmt.Sprintf("(%d containers)", len(containers))
	if len(containers) == 1 {
		label = "(1 container)"
	}
	r.Println(r.Styles().Muted.Render(label))
	return nil
}

// objectListing is the JSON shape of an ls invocation.
type objectListing struct {
	Prefixes  []string             `json:"prefixes"`
	Objects   []core.StorageObject `json:"objects"`
	Truncated bool                 `json:"truncated"`
}

func renderObjects(r *output.Renderer, prefixes []string, objects []core.StorageObject, truncated bool) error {
	if r.EffectiveMode() == output.ModeJSON {
		listing := objectListing{Prefixes: prefixes, Objects: objects, Truncated: truncated}
		if listing.Prefixes == nil {
			listing.Prefixes = []string{}
		}
		if listing.Objects == nil {
			listing.Objects = []core.StorageObject{}
		}
		return r.JSON(listing)
	}

	if len(prefixes) == 0 && len(objects) == 0 {
		r.Println("No objects found.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Out())
	t.AppendHeader(table.Row{"key", "size", "modified"})
	for _, p := range prefixes {
		t.AppendRow(table.Row{p, "-", "-"})
	}
	for _, o := range objects {
		modified := "-"
		if !o.LastModified.IsZero() {
			modified = o.LastModified.Format("2006-01-02 15:04")
		}
		t.AppendRow(table.Row{o.Key, humanize.IBytes(uint64(o.Size)), modified})
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		t.Style().Format.Header = text.FormatDefault
		t.RenderMarkdown()
	} else {
		t.SetStyle(table.StyleLight)
		t.Render()
		label := fmt.Sprintf("(%d objects, %d folders)", len(objects), len(prefixes))
		r.Println(r.Styles().Muted.Render(label))
	}

	if truncated {
		r.Println(r.Styles().Muted.Render("listing truncated; pass --all for the rest"))
	}
	return nil
}

func renderObjectDetails(r *output.Renderer, d *core.ObjectDetails) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(d)
	}

	pairs := [][2]string{
		{"Key", d.Key},
		{"Size", fmt.Sprintf("%s (%d bytes)", humanize.IBytes(uint64(d.Size)), d.Size)},
	}
	if !d.LastModified.IsZero() {
		pairs = append(pairs, [2]string{"Last Modified", d.LastModified.Format(time.RFC3339)})
	}
	if d.ContentType != "" {
		pairs = append(pairs, [2]string{"Content Type", d.ContentType})
	}
	if d.ETag != "" {
		pairs = append(pairs, [2]string{"ETag", d.ETag})
	}
	if d.StorageClass != "" {
		pairs = append(pairs, [2]string{"Storage Class", d.StorageClass})
	}
	if d.VersionID != "" {
		pairs = append(pairs, [2]string{"Version", d.VersionID})
	}
	if d.AccessTier != "" {
		pairs = append(pairs, [2]string{"Access Tier", d.AccessTier})
	}
	if d.BlobType != "" {
		pairs = append(pairs, [2]string{"Blob Type", d.BlobType})
	}

	for _, kv := range pairs {
		if r.EffectiveMode() == output.ModeMarkdown {
			r.Println(output.FormatKeyValue(kv[0], kv[1]))
		} else {
			r.Printf("%-15s %s\n", kv[0]+":", kv[1])
		}
	}

	if len(d.Metadata) > 0 {
		r.Println("")
		r.Header(2, "Metadata")
		keys := make([]string, 0, len(d.Metadata))
		for k := range d.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if r.EffectiveMode() == output.ModeMarkdown {
				r.Println(output.FormatKeyValue(k, d.Metadata[k]))
			} else {
				r.Printf("%-15s %s\n", k+":", d.Metadata[k])
			}
		}
	}
	return nil
}
