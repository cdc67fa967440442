package networth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/finboard/internal/api"
	"github.com/Veraticus/finboard/internal/chart"
	"github.com/Veraticus/finboard/internal/model"
	"github.com/Veraticus/finboard/internal/tui/viewmodel"
)

// ProjectionGateway is the projection part of the backend.
type ProjectionGateway interface {
	NetWorth(ctx context.Context, email string, profileID int64) ([]model.NetWorthPoint, error)
	Summary(ctx context.Context, email string, profileID int64) ([]model.SummaryItem, error)
	ProjectedExpenses(ctx context.Context, email string, profileID int64) ([]model.ExpensePoint, error)
	ProjectedIncome(ctx context.Context, email string, profileID int64) ([]model.ProjectedIncomePoint, error)
	SavingsRatio(ctx context.Context, email string, profileID int64) ([]model.SavingsRatioPoint, error)
	ExportNetWorth(ctx context.Context, email string, profileID int64) (*api.Export, error)
}

// SummaryColumns are the net-worth summary table columns.
var SummaryColumns = []string{"Category", "Type", "Value", "Start Date", "End Date", "Rate"}

// ProjectionData is everything the projection screen shows for a profile.
type ProjectionData struct {
	NetWorth     []model.NetWorthPoint
	Summary      []model.SummaryItem
	Expenses     []model.ExpensePoint
	Income       []model.ProjectedIncomePoint
	SavingsRatio []model.SavingsRatioPoint
}

// ProjectionLoaded carries the result of a projection fetch.
type ProjectionLoaded struct {
	Err       error
	Data      ProjectionData
	ProfileID int64
	Seq       uint64
}

// Projection is the summary screen of the selected profile: the line-item
// table and the projection charts.
type Projection struct {
	gw        ProjectionGateway
	id        Identity
	profiles  ProfileScope
	logger    *slog.Logger
	Table     *viewmodel.Table
	data      ProjectionData
	profileID int64
	Status    viewmodel.Status
}

// NewProjection creates the store.
func NewProjection(gw ProjectionGateway, id Identity, profiles ProfileScope, logger *slog.Logger) *Projection {
	return &Projection{
		gw:       gw,
		id:       id,
		profiles: profiles,
		logger:   orDefault(logger),
		Table:    viewmodel.NewTable(viewmodel.TableOptions{Columns: SummaryColumns}),
	}
}

// Begin starts a fetch.
func (p *Projection) Begin() uint64 {
	return p.Status.Begin()
}

func (p *Projection) scope() (string, int64, error) {
	email, err := requireEmail(p.id)
	if err != nil {
		return "", 0, err
	}
	profileID, err := p.profiles.SelectedID()
	if err != nil {
		return "", 0, err
	}
	return email, profileID, nil
}

// Fetch loads the five projection datasets of the selected profile
// concurrently. Any failure fails the whole fetch.
func (p *Projection) Fetch(ctx context.Context, seq uint64) ProjectionLoaded {
	msg := ProjectionLoaded{Seq: seq}
	email, profileID, err := p.scope()
	if err != nil {
		msg.Err = err
		return msg
	}
	msg.ProfileID = profileID

	var data ProjectionData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.NetWorth, err = p.gw.NetWorth(gctx, email, profileID)
		return err
	})
	g.Go(func() (err error) {
		data.Summary, err = p.gw.Summary(gctx, email, profileID)
		return err
	})
	g.Go(func() (err error) {
		data.Expenses, err = p.gw.ProjectedExpenses(gctx, email, profileID)
		return err
	})
	g.Go(func() (err error) {
		data.Income, err = p.gw.ProjectedIncome(gctx, email, profileID)
		return err
	})
	g.Go(func() (err error) {
		data.SavingsRatio, err = p.gw.SavingsRatio(gctx, email, profileID)
		return err
	})
	if err := g.Wait(); err != nil {
		msg.Err = err
		return msg
	}
	msg.Data = data
	return msg
}

// Apply replaces the projection with a fetch result.
func (p *Projection) Apply(msg ProjectionLoaded) {
	if p.Status.Settle(msg.Seq, msg.Err, "Failed to fetch net worth data.") {
		p.logger.Debug("applying out-of-order response", "store", "projection", "seq", msg.Seq, "latest", p.Status.Latest())
	}
	if msg.Err != nil {
		return
	}
	p.data = msg.Data
	p.profileID = msg.ProfileID

	records := make([]model.Record, 0, len(msg.Data.Summary))
	for _, item := range msg.Data.Summary {
		records = append(records, item.Record())
	}
	p.Table.SetRecords(records)
}

// Refresh fetches synchronously.
func (p *Projection) Refresh(ctx context.Context) error {
	msg := p.Fetch(ctx, p.Begin())
	p.Apply(msg)
	return msg.Err
}

// Reset drops the loaded projection, as on a profile switch.
func (p *Projection) Reset() {
	p.data = ProjectionData{}
	p.profileID = 0
	p.Table.SetRecords(nil)
}

// Data returns the loaded projection.
func (p *Projection) Data() ProjectionData {
	return p.data
}

// ProfileID is the profile the projection was loaded for.
func (p *Projection) ProfileID() int64 {
	return p.profileID
}

// NetWorthSeries is the net-worth line.
func (p *Projection) NetWorthSeries() chart.Series {
	return chart.NetWorthSeries(p.data.NetWorth)
}

// IncomeSeries are the two projected income lines.
func (p *Projection) IncomeSeries() (income, assets chart.Series) {
	return chart.ProjectedIncomeSeries(p.data.Income)
}

// ExpenseSeries are the projected expense bars.
func (p *Projection) ExpenseSeries() chart.Series {
	return chart.ExpenseSeries(p.data.Expenses)
}

// SavingsRatioSeries are the savings ratio bars.
func (p *Projection) SavingsRatioSeries() chart.Series {
	return chart.SavingsRatioSeries(p.data.SavingsRatio)
}

// Export downloads the projection spreadsheet of the selected profile and
// writes it to dest. When dest is a directory the server's file name is used
// inside it. Bytes written are mirrored to progress when it is non-nil. It
// returns the written path.
func (p *Projection) Export(ctx context.Context, dest string, progress io.Writer) (string, error) {
	email, profileID, err := p.scope()
	if err != nil {
		p.Status.Fail(api.Message(err, err.Error()))
		return "", err
	}

	export, err := p.gw.ExportNetWorth(ctx, email, profileID)
	if err != nil {
		p.Status.Fail(api.Message(err, "Failed to export net worth."))
		return "", err
	}

	path, err := exportPath(dest, export.Filename)
	if err != nil {
		return "", err
	}
	if err := writeExport(path, export.Data, progress); err != nil {
		p.Status.Fail("Failed to save the export.")
		return "", err
	}

	p.logger.Info("net worth exported", "path", path, "bytes", len(export.Data), "profile_id", profileID)
	p.Status.Succeed("Saved " + path)
	return path, nil
}

func exportPath(dest, filename string) (string, error) {
	if dest == "" {
		return filename, nil
	}
	info, err := os.Stat(dest)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(dest, filename), nil
	case err == nil, errors.Is(err, fs.ErrNotExist):
		return dest, nil
	default:
		return "", fmt.Errorf("failed to inspect %s: %w", dest, err)
	}
}

func writeExport(path string, data []byte, progress io.Writer) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	var w io.Writer = f
	if progress != nil {
		w = io.MultiWriter(f, progress)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
