package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/reel-studio/internal/composition"
	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/mediaio"
	"github.com/orgball2608/reel-studio/internal/repositories/project"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/spf13/cobra"
)

// projectFile is the on-disk form of a project.
type projectFile struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Composition domain.Composition `json:"composition"`
}

func (p projectFile) toDomain() domain.Project {
	return domain.Project{ID: p.ID, Title: p.Title, Composition: p.Composition}
}

func loadProject(path string) (projectFile, error) {
	var p projectFile
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, errors.Wrapf(errors.ErrNotFound, "project file %s", path)
		}
		return p, err
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, errors.WrapWithCode(err, errors.CodeInvalidInput, "parse project file "+path)
	}
	if p.Composition.Mode == "" {
		p.Composition.Mode = domain.MediaModeVideo
	}
	return p, nil
}

// saveProject replaces path atomically.
func saveProject(path string, p projectFile) error {
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Create, edit, inspect and sync project files",
}

var projectNewCmd = &cobra.Command{
	Use:   "new <project.json>",
	Short: "Create an empty project file",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectNew,
}

var projectImportCmd = &cobra.Command{
	Use:   "import <project.json> <media...>",
	Short: "Append media to a project as clips or slides",
	Long: `Import probes every file and appends it untrimmed to the timeline. Files
whose duration cannot be measured get the configured fallback duration. With
--slides the files become a slideshow instead, which replaces any clips.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runProjectImport,
}

var projectTimelineCmd = &cobra.Command{
	Use:   "timeline <project.json>",
	Short: "Print the resolved timeline of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectTimeline,
}

var projectSaveCmd = &cobra.Command{
	Use:   "save <project.json>",
	Short: "Store a project in the studio database",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectSave,
}

var projectPullCmd = &cobra.Command{
	Use:   "pull <id> <project.json>",
	Short: "Write a stored project to a file",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectPull,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recently updated projects in the studio database",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var (
	projectTitle string
	importSlides bool
	listLimit    int
)

func init() {
	projectCmd.AddCommand(projectNewCmd)
	projectCmd.AddCommand(projectImportCmd)
	projectCmd.AddCommand(projectTimelineCmd)
	projectCmd.AddCommand(projectSaveCmd)
	projectCmd.AddCommand(projectPullCmd)
	projectCmd.AddCommand(projectListCmd)

	projectNewCmd.Flags().StringVarP(&projectTitle, "title", "t", "", "Project title")
	projectImportCmd.Flags().BoolVar(&importSlides, "slides", false, "Import images as a slideshow")
	projectListCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Number of projects to list")
}

func runProjectNew(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err == nil {
		return errors.Wrapf(errors.ErrAlreadyExists, "project file %s", path)
	}
	p := projectFile{
		ID:    uuid.NewString(),
		Title: projectTitle,
		Composition: domain.Composition{
			Mode:           domain.MediaModeVideo,
			BackgroundGain: 1,
			Filter:         env.cfg.Studio.Filter,
		},
	}
	if err := saveProject(path, p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created project %s in %s\n", p.ID, path)
	return nil
}

func runProjectImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	p, err := loadProject(path)
	if err != nil {
		return err
	}
	comp, err := composition.FromSnapshot(p.Composition)
	if err != nil {
		return err
	}

	uris := make([]string, 0, len(args)-1)
	for _, file := range args[1:] {
		uris = append(uris, mediaURI(file))
	}
	if importSlides {
		err = importSlideshow(comp, uris, env.cfg.Studio.SlideDuration)
	} else {
		err = importClips(cmd.Context(), env.prober, rootDir, comp, uris)
	}
	if err != nil {
		return err
	}

	p.Composition = comp.Snapshot()
	if err := saveProject(path, p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d files, timeline is now %s\n", len(uris), comp.MasterDuration())
	return nil
}

// mediaURI keeps relative paths relative so projects stay portable.
func mediaURI(file string) string {
	if filepath.IsAbs(file) {
		return mediaio.URI(file)
	}
	return filepath.ToSlash(file)
}

func importClips(ctx context.Context, prober *mediaio.Prober, root string, comp *composition.Composition, uris []string) error {
	for _, uri := range uris {
		clip, err := prober.Import(ctx, root, uri)
		if err != nil {
			return err
		}
		if _, err := comp.AppendClip(clip); err != nil {
			return errors.Wrapf(err, "append %s", uri)
		}
	}
	return nil
}

// importSlideshow appends to the current slides, or starts a slideshow when
// the project holds clips.
func importSlideshow(comp *composition.Composition, uris []string, perSlide time.Duration) error {
	snap := comp.Snapshot()
	var slides []domain.Slide
	if snap.Mode == domain.MediaModeSlideshow {
		slides = snap.Slides
		perSlide = snap.SlideDuration
	}
	for _, uri := range uris {
		slides = append(slides, domain.Slide{ImageURI: uri})
	}
	return comp.SetSlides(slides, perSlide)
}

func runProjectTimeline(cmd *cobra.Command, args []string) error {
	p, err := loadProject(args[0])
	if err != nil {
		return err
	}
	comp, err := composition.FromSnapshot(p.Composition)
	if err != nil {
		return err
	}
	printTimeline(cmd.OutOrStdout(), p, comp)
	return nil
}

func printTimeline(out io.Writer, p projectFile, comp *composition.Composition) {
	snap := comp.Snapshot()
	fmt.Fprintf(out, "%s (%s)\nmode %s, duration %s, filter %q\n\n", p.Title, p.ID, snap.Mode, comp.MasterDuration(), snap.Filter)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSTART\tEND\tSOURCE\tTRIM")
	var at time.Duration
	if snap.Mode == domain.MediaModeSlideshow {
		for i, s := range snap.Slides {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t-\n", i, at, at+snap.SlideDuration, s.ImageURI)
			at += snap.SlideDuration
		}
	} else {
		for i, c := range snap.Clips {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t[%s, %s) of %s\n", i, at, at+c.Length(), c.SourceURI, c.TrimStart, c.TrimEnd, c.TotalDuration)
			at += c.Length()
		}
	}
	_ = w.Flush()

	if len(snap.Overlays) > 0 {
		fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "OVERLAY\tKIND\tSTART\tEND\tCONTENT\tNARRATED")
		for _, o := range snap.Overlays {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%q\t%t\n", o.ID, o.Kind, o.Start, o.End, o.Content, o.NarrationURI != "")
		}
		_ = w.Flush()
	}

	if len(snap.SpeedSegments) > 0 {
		fmt.Fprintln(out)
		for _, s := range snap.SpeedSegments {
			fmt.Fprintf(out, "speed %.2gx over [%s, %s)\n", s.Rate, s.Start, s.End)
		}
	}
	if snap.BackgroundURI != "" {
		fmt.Fprintf(out, "\nbackground %s at gain %.2f\n", snap.BackgroundURI, snap.BackgroundGain)
	}
}

func openProjects(ctx context.Context) (project.Repository, func(), error) {
	pool, err := pgxpool.New(ctx, env.cfg.GetDSN())
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, errors.Wrap(err, "connect to postgres")
	}
	return project.NewPgx(pool, env.log), pool.Close, nil
}

func runProjectSave(cmd *cobra.Command, args []string) error {
	p, err := loadProject(args[0])
	if err != nil {
		return err
	}
	if _, err := composition.FromSnapshot(p.Composition); err != nil {
		return err
	}
	repo, closeRepo, err := openProjects(cmd.Context())
	if err != nil {
		return err
	}
	defer closeRepo()

	ctx := cmd.Context()
	_, err = repo.Create(ctx, p.toDomain())
	if errors.Is(err, errors.ErrAlreadyExists) {
		err = repo.Update(ctx, p.toDomain())
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved project %s\n", p.ID)
	return nil
}

func runProjectPull(cmd *cobra.Command, args []string) error {
	repo, closeRepo, err := openProjects(cmd.Context())
	if err != nil {
		return err
	}
	defer closeRepo()

	stored, err := repo.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	p := projectFile{ID: stored.ID, Title: stored.Title, Composition: stored.Composition}
	if err := saveProject(args[1], p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote project %s to %s\n", p.ID, args[1])
	return nil
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	repo, closeRepo, err := openProjects(cmd.Context())
	if err != nil {
		return err
	}
	defer closeRepo()

	projects, err := repo.List(cmd.Context(), listLimit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDURATION\tUPDATED")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Composition.MasterDuration(), p.UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
