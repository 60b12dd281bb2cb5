// Package app contains the application services that orchestrate the
// screening workflow across the secondary ports.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/example/gemscreen/internal/config"
	"github.com/example/gemscreen/internal/core/analysis"
	"github.com/example/gemscreen/internal/core/rescue"
	"github.com/example/gemscreen/internal/core/well"
	"github.com/example/gemscreen/internal/imageio"
	"github.com/example/gemscreen/internal/metrics"
	"github.com/example/gemscreen/internal/ports/primary"
	"github.com/example/gemscreen/internal/ports/secondary"
)

// ErrPipelineQuit signals an intentional abort at a workflow gate. All
// persisted state stays intact; the caller moves on to the next well.
var ErrPipelineQuit = errors.New("pipeline quit at gate")

// ErrMissingStimMask means an eligible FOV reached illumination without a
// stim mask. Stimulating without one risks mis-targeting, so the well
// stops immediately.
var ErrMissingStimMask = errors.New("stim mask missing for eligible FOV")

// PipelineService is the round sequencer: it drives imaging, the
// processing barrier, cell selection, stimulation and control imaging for
// one well at a time.
type PipelineService struct {
	cfg        *config.Config
	store      secondary.WellStore
	ledger     secondary.RunLedger
	client     secondary.ProcessingClient
	instrument secondary.Instrument
	selector   secondary.CellSelector
	gates      secondary.GatePrompter
	out        io.Writer
}

var _ primary.PipelineService = (*PipelineService)(nil)

// NewPipelineService wires the engine to its ports. Progress lines go to
// out.
func NewPipelineService(
	cfg *config.Config,
	store secondary.WellStore,
	ledger secondary.RunLedger,
	client secondary.ProcessingClient,
	instrument secondary.Instrument,
	selector secondary.CellSelector,
	gates secondary.GatePrompter,
	out io.Writer,
) *PipelineService {
	return &PipelineService{
		cfg:        cfg,
		store:      store,
		ledger:     ledger,
		client:     client,
		instrument: instrument,
		selector:   selector,
		gates:      gates,
		out:        out,
	}
}

// RunWell executes the full round sequence for a fresh well:
// cleanup, round-1 imaging, the ligand gate, round-2 imaging, the
// processing barrier, mask reconciliation, cell selection, stim mask
// generation, illumination, the control gate and control imaging.
func (s *PipelineService) RunWell(ctx context.Context, req primary.RunWellRequest) error {
	w, err := s.store.Create(ctx, req.RunDir, req.RunID, req.WellLabel, req.Grid)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "well %s: created under %s\n", w.Label, w.WellDir)

	if err := s.cleanup(ctx, w); err != nil {
		return err
	}
	if err := s.step(ctx, w, "imaging_round_1", func() error {
		return s.imageRound(ctx, w, 1)
	}); err != nil {
		return err
	}
	if err := s.ligandGate(ctx, w); err != nil {
		return err
	}
	return s.runFromRound2(ctx, w)
}

// ResumeWell classifies the well's on-disk evidence and continues from the
// safe point the assessment proposes. The directory tree is never reset
// here.
func (s *PipelineService) ResumeWell(ctx context.Context, req primary.ResumeWellRequest) error {
	w, err := s.store.Load(ctx, req.ObjPath)
	if err != nil {
		return err
	}
	a, err := s.assess(w)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "well %s: rescue status %s\n", w.Label, a.Status)

	switch a.Status {
	case rescue.StatusContinueRound1, rescue.StatusReadyForRound2:
		// No round-2 evidence yet: re-image what round 1 is missing, then
		// take the normal path through the ligand gate.
		if err := s.cleanup(ctx, w); err != nil {
			return err
		}
		if err := s.step(ctx, w, "imaging_round_1", func() error {
			return s.imageRound(ctx, w, 1)
		}); err != nil {
			return err
		}
		if err := s.ligandGate(ctx, w); err != nil {
			return err
		}
		return s.runFromRound2(ctx, w)

	case rescue.StatusAnalyzeCompletePairsOnly:
		// Stimulation already happened, so round 1 cannot be redone.
		// Restrict the well to FOVs complete in both rounds and analyze
		// those.
		complete := make(map[string]bool, len(a.CompletePairs))
		for _, id := range a.CompletePairs {
			complete[id] = true
		}
		for _, f := range w.FOVs {
			if !complete[f.ID] {
				f.ContainsTarget = false
			}
		}
		if err := s.store.Save(ctx, w); err != nil {
			return err
		}
		if len(a.CompletePairs) == 0 {
			return fmt.Errorf("well %s: no FOV is complete in both rounds, nothing to analyze", w.Label)
		}
		if err := s.cleanup(ctx, w); err != nil {
			return err
		}
		// Cleanup wiped the server's counters, so the registered round-1
		// frames must be resubmitted too; imageRound never re-captures a
		// registered frame, it only re-dispatches it.
		if err := s.step(ctx, w, "imaging_round_1", func() error {
			return s.imageRound(ctx, w, 1)
		}); err != nil {
			return err
		}
		return s.runFromRound2(ctx, w)

	case rescue.StatusContinueRound2, rescue.StatusComplete:
		// Ligand was already added (round-2 evidence exists); skip the
		// gate, resubmit round 1 for the wiped server bookkeeping, then
		// fill the round-2 gaps and continue.
		if err := s.cleanup(ctx, w); err != nil {
			return err
		}
		if err := s.step(ctx, w, "imaging_round_1", func() error {
			return s.imageRound(ctx, w, 1)
		}); err != nil {
			return err
		}
		return s.runFromRound2(ctx, w)

	default:
		return fmt.Errorf("well %s: unknown rescue status %q", w.Label, a.Status)
	}
}

// AssessWell returns the rescue assessment without running anything.
func (s *PipelineService) AssessWell(ctx context.Context, req primary.AssessWellRequest) (*rescue.Assessment, error) {
	w, err := s.store.Load(ctx, req.ObjPath)
	if err != nil {
		return nil, err
	}
	a, err := s.assess(w)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *PipelineService) assess(w *well.Well) (*rescue.Assessment, error) {
	files, err := s.store.ListImageFiles(w)
	if err != nil {
		return nil, err
	}
	var expected []string
	for _, f := range w.EligibleFOVs() {
		expected = append(expected, f.ID)
	}
	a := rescue.Assess(expected, files, s.cfg.Measure.DoRefseg)
	return &a, nil
}

// runFromRound2 is the tail shared by fresh runs and every resume path:
// round-2 imaging (a no-op for FOVs already complete), the completion
// barrier, reconciliation, selection, stimulation and the control loop.
func (s *PipelineService) runFromRound2(ctx context.Context, w *well.Well) error {
	if err := s.step(ctx, w, "imaging_round_2", func() error {
		return s.imageRound(ctx, w, 2)
	}); err != nil {
		return err
	}
	if err := s.step(ctx, w, "await_processing", func() error {
		return s.client.AwaitCompletion(ctx, w.WellID(), s.cfg.Server.PollInterval, s.cfg.Server.CompletionTimeout)
	}); err != nil {
		return err
	}
	if err := s.step(ctx, w, "reconcile_masks", func() error {
		return s.reconcileMasks(ctx, w)
	}); err != nil {
		return err
	}
	var rows []analysis.Measurement
	if err := s.step(ctx, w, "cell_selection", func() error {
		var err error
		rows, err = s.selectCells(ctx, w)
		return err
	}); err != nil {
		return err
	}
	if err := s.step(ctx, w, "stim_mask_generation", func() error {
		return s.generateStimMasks(ctx, w, rows)
	}); err != nil {
		return err
	}
	if err := s.step(ctx, w, "illumination", func() error {
		return s.illuminate(ctx, w)
	}); err != nil {
		return err
	}
	if s.cfg.Control.Loop {
		if err := s.controlGate(ctx, w); err != nil {
			return err
		}
		if err := s.step(ctx, w, "control_imaging", func() error {
			return s.controlImaging(ctx, w)
		}); err != nil {
			return err
		}
	}
	metrics.WellsCompleted.Inc()
	fmt.Fprintf(s.out, "well %s: done\n", w.Label)
	return nil
}

// cleanup purges the server's stale bookkeeping for this well. Required
// before any submission: leftover counters from an abandoned attempt would
// make the completion barrier under- or over-count.
func (s *PipelineService) cleanup(ctx context.Context, w *well.Well) error {
	return s.step(ctx, w, "cleanup", func() error {
		deleted, err := s.client.Cleanup(ctx, w.WellID())
		if err != nil {
			return err
		}
		if deleted > 0 {
			fmt.Fprintf(s.out, "well %s: purged %d stale server entries\n", w.Label, deleted)
		}
		return nil
	})
}

// imageRound captures the given round for every eligible FOV and
// dispatches the frames for remote processing. A FOV whose frame for this
// round is already registered is not re-captured, only re-dispatched, so
// the same call serves fresh runs and rescue continuations.
func (s *PipelineService) imageRound(ctx context.Context, w *well.Well, round int) error {
	targets := w.EligibleFOVs()
	if len(targets) == 0 {
		return fmt.Errorf("well %s: no eligible FOVs to image", w.Label)
	}
	total := len(targets)

	for _, f := range targets {
		measurePath, haveMeasure := pathForRound(f, well.CategoryMeasure, round)
		refsegPath, haveRefseg := pathForRound(f, well.CategoryRefseg, round)
		needRefseg := s.cfg.Measure.DoRefseg && !haveRefseg

		if !haveMeasure || needRefseg {
			if err := s.instrument.MoveTo(ctx, f.Coord); err != nil {
				return fmt.Errorf("FOV %s: %w", f.ID, err)
			}
		}
		if !haveMeasure {
			var err error
			measurePath, err = s.capture(ctx, f, well.CategoryMeasure, round, presetOf(s.cfg.Measure.Preset))
			if err != nil {
				return err
			}
		}
		if needRefseg {
			var err error
			refsegPath, err = s.capture(ctx, f, well.CategoryRefseg, round, presetOf(s.cfg.Measure.RefsegPreset))
			if err != nil {
				return err
			}
		}

		// With the refseg channel enabled the expensive full pass runs on
		// it and the measurement frame only needs background removal;
		// otherwise the measurement frame carries the full pass itself.
		if s.cfg.Measure.DoRefseg {
			if err := s.client.SubmitBackgroundSub(ctx, s.backgroundPayload(measurePath)); err != nil {
				return fmt.Errorf("FOV %s: %w", f.ID, err)
			}
			if err := s.client.SubmitFullProcess(ctx, s.processPayload(w, refsegPath, round, total)); err != nil {
				return fmt.Errorf("FOV %s: %w", f.ID, err)
			}
		} else {
			if err := s.client.SubmitFullProcess(ctx, s.processPayload(w, measurePath, round, total)); err != nil {
				return fmt.Errorf("FOV %s: %w", f.ID, err)
			}
		}
	}
	return s.store.Save(ctx, w)
}

// capture snaps one frame at the current stage position, registers its
// canonical path and writes it atomically.
func (s *PipelineService) capture(ctx context.Context, f *well.FieldOfView, cat well.Category, instance int, preset secondary.Preset) (well.Path, error) {
	img, err := s.instrument.Snap(ctx, preset)
	if err != nil {
		return "", fmt.Errorf("FOV %s: failed to capture %s frame: %w", f.ID, cat, err)
	}
	p, err := f.RegisterImage(cat, instance)
	if err != nil {
		return "", fmt.Errorf("FOV %s: %w", f.ID, err)
	}
	if err := imageio.WriteAtomic(p, img); err != nil {
		return "", err
	}
	return p, nil
}

func (s *PipelineService) backgroundPayload(p well.Path) secondary.BackgroundPayload {
	return secondary.BackgroundPayload{
		ImgPath: string(p),
		Sigma:   s.cfg.Server.Sigma,
		Size:    s.cfg.Server.Size,
	}
}

func (s *PipelineService) processPayload(w *well.Well, p well.Path, round, total int) secondary.ProcessPayload {
	srv := s.cfg.Server
	return secondary.ProcessPayload{
		ImgPath: string(p),
		Sigma:   srv.Sigma,
		Size:    srv.Size,
		ModelSettings: secondary.ModelSettings{
			ModelType:   srv.ModelType,
			RestoreType: srv.RestoreType,
			GPU:         srv.GPU,
		},
		SegSettings: secondary.SegSettings{
			Diameter:          srv.Diameter,
			FlowThreshold:     srv.FlowThreshold,
			CellprobThreshold: srv.CellprobThreshold,
		},
		DstFolder:            string(w.MasksDir()),
		Round:                round,
		WellID:               w.WellID(),
		TotalFOVs:            total,
		DoDenoise:            srv.DoDenoise,
		TrackStitchThreshold: srv.TrackStitchThreshold,
	}
}

// reconcileMasks attaches the masks the processing server wrote into the
// masks directory back onto their FOV records. When every eligible FOV
// already carries at least one mask the scan is skipped, so re-entry after
// a crash is a no-op.
func (s *PipelineService) reconcileMasks(ctx context.Context, w *well.Well) error {
	eligible := w.EligibleFOVs()
	allRegistered := true
	for _, f := range eligible {
		if f.Paths.Count(well.CategoryMask) == 0 {
			allRegistered = false
			break
		}
	}
	if allRegistered {
		return nil
	}

	names, err := s.store.ListMaskFiles(w)
	if err != nil {
		return err
	}

	counts := map[string]int{}
	for _, name := range names {
		fovID, cat, _, err := well.ParseFilename(name)
		if err != nil {
			fmt.Fprintf(s.out, "well %s: skipping malformed mask file %s: %v\n", w.Label, name, err)
			continue
		}
		if cat != well.CategoryMask {
			continue
		}
		f := w.FOVByID(fovID)
		if f == nil {
			fmt.Fprintf(s.out, "well %s: mask %s names unknown FOV %s\n", w.Label, name, fovID)
			continue
		}
		if f.Paths.Count(well.CategoryMask) > 0 {
			// Already attached on a previous pass.
			continue
		}
		counts[fovID]++
	}
	for _, name := range names {
		fovID, cat, _, err := well.ParseFilename(name)
		if err != nil || cat != well.CategoryMask {
			continue
		}
		if counts[fovID] == 0 {
			continue
		}
		f := w.FOVByID(fovID)
		if err := f.RegisterExisting(well.Path(filepath.Join(string(w.MasksDir()), name))); err != nil {
			return err
		}
	}

	uneven := false
	var first = -1
	for _, f := range eligible {
		n := f.Paths.Count(well.CategoryMask)
		if first == -1 {
			first = n
		} else if n != first {
			uneven = true
		}
	}
	if uneven {
		fmt.Fprintf(s.out, "well %s: warning: FOVs carry differing mask counts, analysis proceeds on what is present\n", w.Label)
	}
	return s.store.Save(ctx, w)
}

// selectCells extracts per-object measurements in parallel across FOVs,
// writes the measurement table, hands it to the external selection tool
// and reads back the process flags.
func (s *PipelineService) selectCells(ctx context.Context, w *well.Well) ([]analysis.Measurement, error) {
	eligible := w.EligibleFOVs()

	var mu sync.Mutex
	var all []analysis.Measurement

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, f := range eligible {
		f := f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img1, img2, err := roundPair(f, well.CategoryMeasure)
			if err != nil {
				mu.Lock()
				fmt.Fprintf(s.out, "well %s: skipping FOV %s: %v\n", w.Label, f.ID, err)
				mu.Unlock()
				return nil
			}
			mask1, mask2, err := roundPair(f, well.CategoryMask)
			if err != nil {
				mu.Lock()
				fmt.Fprintf(s.out, "well %s: skipping FOV %s: %v\n", w.Label, f.ID, err)
				mu.Unlock()
				return nil
			}
			rows, err := analysis.ComputeMeasurements(f.ID, f.Coord, img1, img2, mask1, mask2, s.cfg.Stim.TrueCellThreshold)
			if err != nil {
				return err
			}
			mu.Lock()
			all = append(all, rows...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("well %s: no measurable objects", w.Label)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].FOVID != all[j].FOVID {
			return all[i].FOVID < all[j].FOVID
		}
		return all[i].Label < all[j].Label
	})

	if err := s.writeTable(w, all); err != nil {
		return nil, err
	}
	if err := s.selector.Select(ctx, w.CSVPath(), s.cfg.Stim.CropSize); err != nil {
		return nil, err
	}
	rows, err := s.readTable(w)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// generateStimMasks filters each FOV's final mask down to the selected
// labels, erodes the survivors and registers the result. A FOV with no
// surviving label leaves the rest of the pipeline via its contains_target
// flag.
func (s *PipelineService) generateStimMasks(ctx context.Context, w *well.Well, rows []analysis.Measurement) error {
	groups := analysis.GroupByFOV(rows)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, f := range w.EligibleFOVs() {
		f := f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, ok := pathForRound(f, well.CategoryStim, 1); ok {
				// Already generated on a previous pass; registering again
				// would duplicate the registry entry.
				return nil
			}
			keep := map[int]bool{}
			for _, m := range groups[f.ID] {
				if m.Process {
					keep[m.Label] = true
				}
			}
			maskPaths := f.Paths.Get(well.CategoryMask)
			if len(maskPaths) == 0 {
				f.ContainsTarget = false
				return nil
			}
			mask, err := imageio.Read(maskPaths[len(maskPaths)-1])
			if err != nil {
				return err
			}
			filtered := analysis.FilterLabels(mask, keep)
			if analysis.CountLabels(filtered) == 0 {
				f.ContainsTarget = false
				return nil
			}
			eroded := analysis.ErodeMask(filtered, s.cfg.Stim.ErosionFactor)
			p, err := f.RegisterImage(well.CategoryStim, 1)
			if err != nil {
				return err
			}
			return imageio.WriteAtomic(p, eroded)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return s.store.Save(ctx, w)
}

// illuminate drives the stimulation exposure per FOV using its stim mask.
// With the control loop enabled every pre-illumination control frame is
// captured in a full pass and dispatched for background removal before the
// first stimulation exposure.
func (s *PipelineService) illuminate(ctx context.Context, w *well.Well) error {
	eligible := w.EligibleFOVs()
	for _, f := range eligible {
		if len(f.Paths.Get(well.CategoryStim)) == 0 {
			return fmt.Errorf("FOV %s: %w", f.ID, ErrMissingStimMask)
		}
	}

	if s.cfg.Control.Loop {
		for _, f := range eligible {
			if _, ok := pathForRound(f, well.CategoryControl, 1); ok {
				continue
			}
			if err := s.instrument.MoveTo(ctx, f.Coord); err != nil {
				return fmt.Errorf("FOV %s: %w", f.ID, err)
			}
			p, err := s.capture(ctx, f, well.CategoryControl, 1, presetOf(s.cfg.Control.Preset))
			if err != nil {
				return err
			}
			if err := s.client.SubmitBackgroundSub(ctx, s.backgroundPayload(p)); err != nil {
				return fmt.Errorf("FOV %s: %w", f.ID, err)
			}
		}
	}

	for _, f := range eligible {
		if err := s.instrument.MoveTo(ctx, f.Coord); err != nil {
			return fmt.Errorf("FOV %s: %w", f.ID, err)
		}
		stimPaths := f.Paths.Get(well.CategoryStim)
		mask, err := imageio.Read(stimPaths[len(stimPaths)-1])
		if err != nil {
			return err
		}
		if err := s.instrument.Stimulate(ctx, mask, presetOf(s.cfg.Stim.Preset)); err != nil {
			return fmt.Errorf("FOV %s: failed to stimulate: %w", f.ID, err)
		}
	}
	return s.store.Save(ctx, w)
}

// controlImaging captures the post-illumination control frame per FOV and
// merges the pre/post control intensities into the measurement table.
func (s *PipelineService) controlImaging(ctx context.Context, w *well.Well) error {
	for _, f := range w.EligibleFOVs() {
		if _, ok := pathForRound(f, well.CategoryControl, 2); ok {
			continue
		}
		if err := s.instrument.MoveTo(ctx, f.Coord); err != nil {
			return fmt.Errorf("FOV %s: %w", f.ID, err)
		}
		if _, err := s.capture(ctx, f, well.CategoryControl, 2, presetOf(s.cfg.Control.Preset)); err != nil {
			return err
		}
	}

	rows, err := s.readTable(w)
	if err != nil {
		return err
	}
	groups := analysis.GroupByFOV(rows)

	var merged []analysis.Measurement
	for _, f := range w.FOVs {
		fovRows, ok := groups[f.ID]
		if !ok {
			continue
		}
		if !f.ContainsTarget {
			merged = append(merged, fovRows...)
			continue
		}
		maskPaths := f.Paths.Get(well.CategoryMask)
		pre1, ok1 := pathForRound(f, well.CategoryControl, 1)
		post2, ok2 := pathForRound(f, well.CategoryControl, 2)
		if len(maskPaths) == 0 || !ok1 || !ok2 {
			merged = append(merged, fovRows...)
			continue
		}
		mask, err := imageio.Read(maskPaths[len(maskPaths)-1])
		if err != nil {
			return err
		}
		preImg, err := imageio.Read(pre1)
		if err != nil {
			return err
		}
		postImg, err := imageio.Read(post2)
		if err != nil {
			return err
		}
		pre := analysis.MeanIntensities(mask, preImg)
		post := analysis.MeanIntensities(mask, postImg)
		merged = append(merged, analysis.MergeControlIntensities(fovRows, pre, post)...)
	}

	if err := s.writeTable(w, merged); err != nil {
		return err
	}
	return s.store.Save(ctx, w)
}

func (s *PipelineService) writeTable(w *well.Well, rows []analysis.Measurement) error {
	file, err := os.Create(string(w.CSVPath()))
	if err != nil {
		return fmt.Errorf("failed to create measurement table %s: %w", w.CSVPath(), err)
	}
	if err := analysis.WriteTable(file, rows); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (s *PipelineService) readTable(w *well.Well) ([]analysis.Measurement, error) {
	file, err := os.Open(string(w.CSVPath()))
	if err != nil {
		return nil, fmt.Errorf("failed to open measurement table %s: %w", w.CSVPath(), err)
	}
	defer file.Close()
	return analysis.ReadTable(file)
}

func (s *PipelineService) ligandGate(ctx context.Context, w *well.Well) error {
	return s.gate(ctx, w, "ligand_gate", fmt.Sprintf("Well %s: ligand added, continue with round 2?", w.Label))
}

func (s *PipelineService) controlGate(ctx context.Context, w *well.Well) error {
	return s.gate(ctx, w, "control_gate", fmt.Sprintf("Well %s: run the control imaging loop?", w.Label))
}

func (s *PipelineService) gate(ctx context.Context, w *well.Well, step, prompt string) error {
	decision, err := s.gates.Confirm(ctx, prompt)
	if err != nil {
		return err
	}
	if decision == secondary.GateQuit {
		s.journal(ctx, w, step, "quit", "")
		fmt.Fprintf(s.out, "well %s: quit at %s\n", w.Label, step)
		return ErrPipelineQuit
	}
	return nil
}

// step journals the transition around fn and counts it.
func (s *PipelineService) step(ctx context.Context, w *well.Well, name string, fn func() error) error {
	s.journal(ctx, w, name, "started", "")
	err := fn()
	switch {
	case errors.Is(err, ErrPipelineQuit):
		s.journal(ctx, w, name, "quit", "")
		metrics.StepsRun.WithLabelValues(name, "quit").Inc()
	case err != nil:
		s.journal(ctx, w, name, "failed", err.Error())
		metrics.StepsRun.WithLabelValues(name, "failed").Inc()
	default:
		s.journal(ctx, w, name, "done", "")
		metrics.StepsRun.WithLabelValues(name, "done").Inc()
	}
	return err
}

// journal appends a ledger row; a broken ledger never takes the run down.
func (s *PipelineService) journal(ctx context.Context, w *well.Well, step, status, detail string) {
	ev := secondary.RunEvent{
		RunID:     w.RunID,
		WellLabel: w.Label,
		Step:      step,
		Status:    status,
		Detail:    detail,
	}
	if err := s.ledger.Append(ctx, ev); err != nil {
		fmt.Fprintf(s.out, "well %s: failed to journal %s/%s: %v\n", w.Label, step, status, err)
	}
}

// pathForRound returns the registered path of cat whose filename carries
// the given instance number.
func pathForRound(f *well.FieldOfView, cat well.Category, round int) (well.Path, bool) {
	for _, p := range f.Paths.Get(cat) {
		if _, _, instance, err := well.ParseFilename(filepath.Base(string(p))); err == nil && instance == round {
			return p, true
		}
	}
	return "", false
}

// roundPair loads the round-1 and round-2 frames of a category.
func roundPair(f *well.FieldOfView, cat well.Category) (*image.Gray16, *image.Gray16, error) {
	p1, ok := pathForRound(f, cat, 1)
	if !ok {
		return nil, nil, fmt.Errorf("no round-1 %s frame", cat)
	}
	p2, ok := pathForRound(f, cat, 2)
	if !ok {
		return nil, nil, fmt.Errorf("no round-2 %s frame", cat)
	}
	a, err := imageio.Read(p1)
	if err != nil {
		return nil, nil, err
	}
	b, err := imageio.Read(p2)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func presetOf(p config.PresetConfig) secondary.Preset {
	return secondary.Preset{
		OpticalConfiguration: p.OpticalConfiguration,
		Intensity:            p.Intensity,
		ExposureMs:           p.ExposureMs,
	}
}
