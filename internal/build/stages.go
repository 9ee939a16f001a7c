package build

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/fsutil"
	"git.home.luguber.info/inful/sitebuilder/internal/linkverify"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/tasks"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
)

// VendorCSSTarget is where the vendored stylesheet lands, relative to the output root.
const VendorCSSTarget = "css/github-markdown.css"

// State is shared by the stages of one build.
type State struct {
	Config   *config.Config
	Renderer markdown.Renderer
	Engine   *templates.Engine
	Sleep    Sleeper
	Progress Progress
	Observer BuildObserver
	Report   *BuildReport

	entries []tasks.IndexEntry
}

// DefaultPipeline lists the stages for cfg in execution order.
func DefaultPipeline(cfg *config.Config) []StageDef {
	return NewPipeline().
		Add(StageResetOutput, stageResetOutput).
		Add(StageCopyAssets, stageCopyAssets).
		Add(StageVendorCSS, stageVendorCSS).
		Add(StageRenderTasks, stageRenderTasks).
		Add(StageTaskIndex, stageTaskIndex).
		AddIf(cfg.Build.VerifyLinks, StageVerifyLinks, stageVerifyLinks).
		Build()
}

func stageResetOutput(_ context.Context, st *State) error {
	out := st.Config.Paths.Output
	if err := fsutil.ResetDir(out); err != nil {
		return NewFatalStageError(StageResetOutput,
			errors.WrapError(err, errors.CategoryFileSystem, "failed to reset output directory").
				WithContext("path", out).
				Fatal().
				Build())
	}
	slog.Debug("Output directory reset", logfields.Output(out))
	return nil
}

func stageCopyAssets(_ context.Context, st *State) error {
	src, out := st.Config.Paths.Assets, st.Config.Paths.Output
	if !fsutil.Exists(src, true) {
		return NewFatalStageError(StageCopyAssets,
			errors.WrapError(ErrAssetsMissing, errors.CategoryFileSystem, "cannot copy static assets").
				WithContext("path", src).
				Fatal().
				Build())
	}

	stats, err := fsutil.CopyTree(src, out)
	if err != nil {
		return NewFatalStageError(StageCopyAssets,
			errors.WrapError(err, errors.CategoryFileSystem, "failed to copy static assets").
				WithContext("path", src).
				Fatal().
				Build())
	}
	st.Report.CopiedFiles = stats.Files
	slog.Info("Static assets copied",
		logfields.Path(src),
		logfields.Output(out),
		slog.Int("files", stats.Files),
		slog.Int("skipped", stats.Skipped))
	st.Progress.Step(fmt.Sprintf("Copied %d files from %s", stats.Files, src))
	return nil
}

func stageVendorCSS(_ context.Context, st *State) error {
	src := st.Config.Paths.CSSVendor
	if src == "" {
		return errStageSkipped
	}
	if !fsutil.Exists(src, false) {
		st.Progress.Warn("GitHub markdown CSS not found")
		slog.Warn("Vendored stylesheet missing", logfields.Path(src))
		return NewWarnStageError(StageVendorCSS,
			errors.WrapError(ErrVendorCSSMissing, errors.CategoryNotFound, "skipping stylesheet copy").
				WithContext("path", src).
				Warning().
				Build())
	}

	dst := filepath.Join(st.Config.Paths.Output, filepath.FromSlash(VendorCSSTarget))
	if err := fsutil.CopyFile(src, dst); err != nil {
		return NewFatalStageError(StageVendorCSS,
			errors.WrapError(err, errors.CategoryFileSystem, "failed to copy vendored stylesheet").
				WithContext("path", src).
				Build())
	}
	st.Report.VendoredCSS = true
	st.Progress.Step("Copied " + filepath.Base(dst))
	return nil
}

func stageRenderTasks(ctx context.Context, st *State) error {
	dir := st.Config.Paths.Tasks
	if !fsutil.Exists(dir, true) {
		st.Progress.Warn("tasks directory not found, skipping markdown processing")
		slog.Warn("Task directory missing", logfields.Path(dir))
		return NewWarnStageError(StageRenderTasks,
			errors.WrapError(ErrTasksMissing, errors.CategoryNotFound, "no task pages generated").
				WithContext("path", dir).
				Warning().
				Build())
	}

	if d := st.Config.Build.Delay; d > 0 {
		slog.Debug("Delaying task processing", slog.Duration("delay", d))
		if err := st.Sleep(ctx, d); err != nil {
			return NewCanceledStageError(StageRenderTasks, err)
		}
	}

	docs, err := tasks.Load(dir)
	if err != nil {
		return NewFatalStageError(StageRenderTasks,
			errors.WrapError(err, errors.CategoryFileSystem, "failed to read task documents").
				WithContext("path", dir).
				Build())
	}

	pagesDir := filepath.Join(st.Config.Paths.Output, tasks.OutputSubdir)
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return NewCanceledStageError(StageRenderTasks, err)
		}
		page, err := renderDocument(st, doc)
		if err != nil {
			return NewFatalStageError(StageRenderTasks, err)
		}
		if err := fsutil.WriteFileAtomic(filepath.Join(pagesDir, page.Filename), page.Body); err != nil {
			return NewFatalStageError(StageRenderTasks,
				errors.WrapError(err, errors.CategoryFileSystem, "failed to write task page").
					WithContext("path", page.Filename).
					Build())
		}

		entry := tasks.NewIndexEntry(doc, page)
		st.entries = append(st.entries, entry)
		st.Report.Pages = append(st.Report.Pages, entry)
		st.Report.RenderedPages++
		slog.Debug("Task page written", logfields.File(page.Filename), logfields.Title(page.Title))
		st.Progress.Step("Generated " + page.Filename)
	}
	return nil
}

// renderDocument produces the full HTML page for doc. Body holds the complete document.
func renderDocument(st *State, doc tasks.Document) (tasks.Page, error) {
	fragment, err := st.Renderer.Render(doc.Content)
	if err != nil {
		return tasks.Page{}, errors.WrapError(err, errors.CategoryRender, "failed to render markdown").
			WithContext("path", doc.Filename).
			Build()
	}
	title := doc.Title()
	html, err := st.Engine.TaskPage(title, fragment)
	if err != nil {
		return tasks.Page{}, errors.WrapError(err, errors.CategoryRender, "failed to apply page template").
			WithContext("path", doc.Filename).
			Build()
	}
	return tasks.Page{Filename: doc.OutputName(), Title: title, Body: html}, nil
}

func stageTaskIndex(_ context.Context, st *State) error {
	if len(st.entries) == 0 {
		slog.Debug("No task pages; index not written")
		return errStageSkipped
	}
	page, err := st.Engine.Index(st.entries)
	if err != nil {
		return NewFatalStageError(StageTaskIndex,
			errors.WrapError(err, errors.CategoryRender, "failed to render tasks index").Build())
	}
	path := filepath.Join(st.Config.Paths.Output, tasks.IndexFile)
	if err := fsutil.WriteFileAtomic(path, page); err != nil {
		return NewFatalStageError(StageTaskIndex,
			errors.WrapError(err, errors.CategoryFileSystem, "failed to write tasks index").
				WithContext("path", path).
				Build())
	}
	st.Report.IndexWritten = true
	st.Progress.Step("Generated " + tasks.IndexFile)
	return nil
}

func stageVerifyLinks(ctx context.Context, st *State) error {
	res, err := linkverify.Verify(ctx, st.Config.Paths.Output)
	if err != nil {
		if ctx.Err() != nil {
			return NewCanceledStageError(StageVerifyLinks, ctx.Err())
		}
		return NewWarnStageError(StageVerifyLinks, err)
	}
	st.Report.BrokenLinks = res.Broken
	slog.Info("Links verified", slog.Int("pages", res.Pages), slog.Int("checked", res.Checked), slog.Int("broken", len(res.Broken)))
	if len(res.Broken) == 0 {
		st.Progress.Step(fmt.Sprintf("Checked %d links", res.Checked))
		return nil
	}
	for _, b := range res.Broken {
		st.Progress.Warn(fmt.Sprintf("broken link %s in %s", b.URL, b.Page))
	}
	return NewWarnStageError(StageVerifyLinks, fmt.Errorf("%w: %d", ErrBrokenLinks, len(res.Broken)))
}
