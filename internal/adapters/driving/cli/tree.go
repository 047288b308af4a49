package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/treeutils/internal/core/domain"
	"github.com/custodia-labs/treeutils/internal/core/ports/driving"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Fetch, save and export tree objects",
	Long: `Work with tree objects in the configured workspace backend.

References take the form wsid/objid, wsid/objid/version or name based
variants such as 12/mytree.`,
}

var treeGetCmd = &cobra.Command{
	Use:   "get [ref...]",
	Short: "Fetch tree objects",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTreeGet,
}

var treeSaveCmd = &cobra.Command{
	Use:   "save [file...]",
	Short: "Validate and save newick files as tree objects",
	Long: `Reads each file as a newick string and saves it as a tree object in the
workspace given by --ws-id. Object names default to the file name without
its extension. Nothing is saved if any file holds an invalid tree.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTreeSave,
}

var treeToNewickCmd = &cobra.Command{
	Use:   "to-newick [ref]",
	Short: "Write a stored tree to <dest>/<name>.newick",
	Args:  cobra.ExactArgs(1),
	RunE:  runTreeToNewick,
}

var treeExportCmd = &cobra.Command{
	Use:   "export [ref]",
	Short: "Package a stored tree as a newick file for download",
	Args:  cobra.ExactArgs(1),
	RunE:  runTreeExport,
}

// Flags for tree subcommands.
var (
	treeIncludedFields []string
	treeOutput         string
	treeWSID           int64
	treeName           string
	treeDest           string
)

func init() {
	treeGetCmd.Flags().StringSliceVar(&treeIncludedFields, "included-fields", nil, "only return these data fields")
	treeGetCmd.Flags().StringVarP(&treeOutput, "output", "o", "json", "output format (json or yaml)")

	treeSaveCmd.Flags().Int64Var(&treeWSID, "ws-id", 0, "target workspace id (required)")
	treeSaveCmd.Flags().StringVar(&treeName, "name", "", "object name (single file only)")
	_ = treeSaveCmd.MarkFlagRequired("ws-id")

	treeToNewickCmd.Flags().StringVarP(&treeDest, "dest", "d", ".", "destination directory")

	treeCmd.AddCommand(treeGetCmd)
	treeCmd.AddCommand(treeSaveCmd)
	treeCmd.AddCommand(treeToNewickCmd)
	treeCmd.AddCommand(treeExportCmd)
	rootCmd.AddCommand(treeCmd)
}

// treeView is the printed form of a fetched tree.
type treeView struct {
	Ref      string            `json:"ref" yaml:"ref"`
	Name     string            `json:"name" yaml:"name"`
	Type     string            `json:"type" yaml:"type"`
	SaveDate string            `json:"save_date" yaml:"save_date"`
	SavedBy  string            `json:"saved_by" yaml:"saved_by"`
	Checksum string            `json:"checksum" yaml:"checksum"`
	Size     int64             `json:"size" yaml:"size"`
	Meta     map[string]string `json:"meta,omitempty" yaml:"meta,omitempty"`
	Data     map[string]any    `json:"data" yaml:"data"`
}

func newTreeView(obj domain.ObjectData) treeView {
	return treeView{
		Ref:      obj.Info.Ref(),
		Name:     obj.Info.Name,
		Type:     obj.Info.Type,
		SaveDate: obj.Info.SaveDate,
		SavedBy:  obj.Info.SavedBy,
		Checksum: obj.Info.Checksum,
		Size:     obj.Info.Size,
		Meta:     obj.Info.Meta,
		Data:     obj.Data,
	}
}

func runTreeGet(cmd *cobra.Command, args []string) error {
	if treeOutput != "json" && treeOutput != "yaml" {
		return fmt.Errorf("unknown output format %q (want json or yaml)", treeOutput)
	}

	svc, err := requireTreeService()
	if err != nil {
		return err
	}

	objs, err := svc.GetTrees(cmd.Context(), driving.GetTreesParams{
		TreeRefs:       args,
		IncludedFields: treeIncludedFields,
	})
	if err != nil {
		return fmt.Errorf("get trees: %w", err)
	}

	views := make([]treeView, len(objs))
	for i, obj := range objs {
		views[i] = newTreeView(obj)
	}

	var out []byte
	if treeOutput == "yaml" {
		out, err = yaml.Marshal(views)
	} else {
		out, err = json.MarshalIndent(views, "", "  ")
		out = append(out, '\n')
	}
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runTreeSave(cmd *cobra.Command, args []string) error {
	if treeName != "" && len(args) > 1 {
		return errors.New("--name can only be used with a single file")
	}

	trees := make([]domain.ObjectSaveData, len(args))
	for i, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		name := treeName
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		trees[i] = domain.ObjectSaveData{
			Type: domain.TreeType,
			Name: name,
			Data: domain.TreeData{
				domain.TreeField: strings.TrimSpace(string(content)),
			},
		}
	}

	svc, err := requireTreeService()
	if err != nil {
		return err
	}

	infos, err := svc.SaveTrees(cmd.Context(), driving.SaveTreesParams{
		WSID:  treeWSID,
		Trees: trees,
	})
	if err != nil {
		return fmt.Errorf("save trees: %w", err)
	}

	for _, info := range infos {
		cmd.Printf("Saved %s as %s\n", info.Name, info.Ref())
	}
	return nil
}

func runTreeToNewick(cmd *cobra.Command, args []string) error {
	svc, err := requireTreeService()
	if err != nil {
		return err
	}

	out, err := svc.TreeToNewickFile(cmd.Context(), driving.TreeToNewickFileParams{
		DestinationDir: treeDest,
		InputRef:       args[0],
	})
	if err != nil {
		return fmt.Errorf("tree to newick: %w", err)
	}

	cmd.Printf("Wrote %s\n", out.FilePath)
	return nil
}

func runTreeExport(cmd *cobra.Command, args []string) error {
	svc, err := requireTreeService()
	if err != nil {
		return err
	}

	out, err := svc.ExportTreeNewick(cmd.Context(), driving.ExportTreeParams{InputRef: args[0]})
	if err != nil {
		return fmt.Errorf("export tree: %w", err)
	}

	cmd.Printf("Package: %s\n", out.ShockID)
	return nil
}
