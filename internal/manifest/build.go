package manifest

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jacoelho/proligent"
	perrors "github.com/jacoelho/proligent/errors"
)

// Build assembles the warehouse described by m. loc reads naive timestamps
// when m names no time zone; the returned options carry the zone the
// document should be written in.
func Build(m *Manifest, loc *time.Location) (*proligent.DataWarehouse, proligent.BuildOptions, error) {
	b := builder{loc: loc}
	if m.TimeZone != "" {
		zone, err := proligent.LoadLocation(m.TimeZone)
		if err != nil {
			return nil, proligent.BuildOptions{}, err
		}
		b.loc = zone
	}
	opts := proligent.BuildOptions{Location: b.loc}

	generated, err := b.time("generation_time", m.GenerationTime)
	if err != nil {
		return nil, opts, err
	}
	dw := proligent.NewDataWarehouse(proligent.DataWarehouseOptions{
		GenerationTime:    generated,
		SourceFingerprint: m.Fingerprint,
	})
	if m.Process != nil {
		p, err := b.process(m.Process)
		if err != nil {
			return nil, opts, err
		}
		dw.SetProcessRun(p)
	}
	if m.Product != nil {
		u, err := b.product(m.Product)
		if err != nil {
			return nil, opts, err
		}
		dw.SetProductUnit(u)
	}
	return dw, opts, nil
}

type builder struct {
	loc *time.Location
}

func (b builder) time(field, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	t, err := proligent.ParseTimestamp(s, b.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

func (b builder) optionalTime(field, s string) (*time.Time, error) {
	t, err := b.time(field, s)
	if err != nil || t.IsZero() {
		return nil, err
	}
	return &t, nil
}

// completer is satisfied by every run.
type completer interface {
	CompleteAt(status proligent.ExecutionStatus, end time.Time)
}

// complete applies status and end. An empty status leaves the run not
// completed; a completed run without an end time ends now.
func (b builder) complete(r completer, what, status, end string) error {
	if strings.TrimSpace(status) == "" {
		if strings.TrimSpace(end) != "" {
			return perrors.Newf(perrors.ErrInvalidArgument, "%s has an end time but no status", what)
		}
		return nil
	}
	st, err := proligent.ParseExecutionStatus(status)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	t, err := b.time(what+" end", end)
	if err != nil {
		return err
	}
	if t.IsZero() {
		t = time.Now()
	}
	r.CompleteAt(st, t)
	return nil
}

func (b builder) process(mp *Process) (*proligent.ProcessRun, error) {
	start, err := b.time("process start", mp.Start)
	if err != nil {
		return nil, err
	}
	p := proligent.NewProcessRun(proligent.ProcessRunOptions{
		StartTime:             start,
		ID:                    mp.ID,
		Name:                  mp.Name,
		Version:               mp.Version,
		ProductUnitIdentifier: mp.ProductUnitIdentifier,
		ProductFullName:       mp.ProductFullName,
		ProcessMode:           mp.Mode,
	})
	for i := range mp.Operations {
		op, err := b.operation(&mp.Operations[i])
		if err != nil {
			return nil, err
		}
		p.AddOperationRun(op)
	}
	if err := b.complete(p, "process "+p.ID, mp.Status, mp.End); err != nil {
		return nil, err
	}
	return p, nil
}

func (b builder) operation(mo *Operation) (*proligent.OperationRun, error) {
	start, err := b.time("operation start", mo.Start)
	if err != nil {
		return nil, err
	}
	chars, err := characteristics(mo.Characteristics)
	if err != nil {
		return nil, err
	}
	op, err := proligent.NewOperationRun(proligent.OperationRunOptions{
		StartTime:        start,
		ID:               mo.ID,
		Name:             mo.Name,
		Station:          mo.Station,
		User:             mo.User,
		ProcessName:      mo.ProcessName,
		TestPositionName: mo.TestPosition,
		Characteristics:  chars,
		Documents:        documents(mo.Documents),
	})
	if err != nil {
		return nil, fmt.Errorf("operation %q: %w", mo.Name, err)
	}
	for i := range mo.Sequences {
		seq, err := b.sequence(&mo.Sequences[i])
		if err != nil {
			return nil, err
		}
		if err := op.AddSequenceRun(seq); err != nil {
			return nil, err
		}
	}
	if err := b.complete(op, "operation "+op.ID, mo.Status, mo.End); err != nil {
		return nil, err
	}
	return op, nil
}

func (b builder) sequence(ms *Sequence) (*proligent.SequenceRun, error) {
	start, err := b.time("sequence start", ms.Start)
	if err != nil {
		return nil, err
	}
	chars, err := characteristics(ms.Characteristics)
	if err != nil {
		return nil, err
	}
	seq, err := proligent.NewSequenceRun(proligent.SequenceRunOptions{
		StartTime:       start,
		ID:              ms.ID,
		Name:            ms.Name,
		Version:         ms.Version,
		User:            ms.User,
		Characteristics: chars,
		Documents:       documents(ms.Documents),
	})
	if err != nil {
		return nil, fmt.Errorf("sequence %q: %w", ms.Name, err)
	}
	for i := range ms.Steps {
		step, err := b.step(&ms.Steps[i])
		if err != nil {
			return nil, err
		}
		seq.AddStepRun(step)
	}
	if err := b.complete(seq, "sequence "+seq.ID, ms.Status, ms.End); err != nil {
		return nil, err
	}
	return seq, nil
}

func (b builder) step(mst *Step) (*proligent.StepRun, error) {
	start, err := b.time("step start", mst.Start)
	if err != nil {
		return nil, err
	}
	chars, err := characteristics(mst.Characteristics)
	if err != nil {
		return nil, err
	}
	step, err := proligent.NewStepRun(proligent.StepRunOptions{
		StartTime:       start,
		ID:              mst.ID,
		Name:            mst.Name,
		Characteristics: chars,
		Documents:       documents(mst.Documents),
	})
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", mst.Name, err)
	}
	for i := range mst.Measures {
		m, err := b.measure(&mst.Measures[i])
		if err != nil {
			return nil, fmt.Errorf("step %q measure %d: %w", mst.Name, i, err)
		}
		step.AddMeasure(m)
	}
	if err := b.complete(step, "step "+step.ID, mst.Status, mst.End); err != nil {
		return nil, err
	}
	return step, nil
}

func (b builder) measure(mm *Measure) (proligent.Measure, error) {
	value, err := b.value(mm.Value, mm.Type)
	if err != nil {
		return proligent.Measure{}, err
	}
	at, err := b.time("measure time", mm.Time)
	if err != nil {
		return proligent.Measure{}, err
	}
	opts := proligent.MeasureOptions{
		Time:     at,
		ID:       mm.ID,
		Comments: mm.Comments,
		Unit:     mm.Unit,
		Symbol:   mm.Symbol,
	}
	if mm.Status != "" {
		st, err := proligent.ParseExecutionStatus(mm.Status)
		if err != nil {
			return proligent.Measure{}, err
		}
		opts.Status = &st
	}
	if mm.Limit != nil {
		limit, err := b.limit(mm.Limit)
		if err != nil {
			return proligent.Measure{}, err
		}
		opts.Limit = &limit
	}
	return proligent.NewMeasure(value, opts)
}

func (b builder) limit(ml *Limit) (proligent.Limit, error) {
	expr, err := proligent.ParseLimitExpression(ml.Expression)
	if err != nil {
		return proligent.Limit{}, err
	}
	lower, err := b.bound(ml.Lower)
	if err != nil {
		return proligent.Limit{}, fmt.Errorf("lower bound: %w", err)
	}
	higher, err := b.bound(ml.Higher)
	if err != nil {
		return proligent.Limit{}, fmt.Errorf("higher bound: %w", err)
	}
	return proligent.NewLimit(expr, lower, higher)
}

// bound keeps nil as an absent bound.
func (b builder) bound(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	return b.value(raw, "")
}

func (b builder) product(mp *Product) (*proligent.ProductUnit, error) {
	created, err := b.optionalTime("product creation_time", mp.CreationTime)
	if err != nil {
		return nil, err
	}
	manufactured, err := b.optionalTime("product manufacturing_time", mp.ManufacturingTime)
	if err != nil {
		return nil, err
	}
	scrapped, err := b.optionalTime("product scrap_time", mp.ScrapTime)
	if err != nil {
		return nil, err
	}
	chars, err := characteristics(mp.Characteristics)
	if err != nil {
		return nil, err
	}
	return proligent.NewProductUnit(proligent.ProductUnitOptions{
		CreationTime:      created,
		ManufacturingTime: manufactured,
		ScrapTime:         scrapped,
		Scrapped:          mp.Scrapped,
		Identifier:        mp.Identifier,
		FullName:          mp.FullName,
		Manufacturer:      mp.Manufacturer,
		Characteristics:   chars,
		Documents:         documents(mp.Documents),
	})
}

func characteristics(list []Characteristic) ([]proligent.Characteristic, error) {
	out := make([]proligent.Characteristic, 0, len(list))
	for _, c := range list {
		ch, err := proligent.NewCharacteristic(c.Name, c.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}

func documents(list []Document) []proligent.Document {
	out := make([]proligent.Document, 0, len(list))
	for _, d := range list {
		out = append(out, proligent.Document{
			Identifier:  d.ID,
			FileName:    d.File,
			Name:        d.Name,
			Description: d.Description,
		})
	}
	return out
}

// value turns a decoded scalar into a measure value. Without a kind the
// decoded type decides; with a kind the scalar is converted.
func (b builder) value(raw any, kind string) (proligent.Value, error) {
	raw, err := b.scalar(raw)
	if err != nil {
		return proligent.Value{}, err
	}
	switch strings.ToUpper(strings.TrimSpace(kind)) {
	case "":
		return proligent.ValueOf(raw)
	case proligent.MeasureString.String():
		return proligent.String(fmt.Sprint(raw)), nil
	case proligent.MeasureBool.String():
		switch v := raw.(type) {
		case bool:
			return proligent.Bool(v), nil
		case string:
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return proligent.Value{}, perrors.Wrap(perrors.ErrInvalidArgument, err, "parse BOOL measure")
			}
			return proligent.Bool(parsed), nil
		}
	case proligent.MeasureInteger.String():
		switch v := raw.(type) {
		case int64:
			return proligent.Int(v), nil
		case float64:
			if v == math.Trunc(v) && !math.IsInf(v, 0) {
				return proligent.Int(int64(v)), nil
			}
		case string:
			parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return proligent.Value{}, perrors.Wrap(perrors.ErrInvalidArgument, err, "parse INTEGER measure")
			}
			return proligent.Int(parsed), nil
		}
	case proligent.MeasureReal.String():
		switch v := raw.(type) {
		case int64:
			return proligent.Real(float64(v)), nil
		case float64:
			return proligent.Real(v), nil
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return proligent.Value{}, perrors.Wrap(perrors.ErrInvalidArgument, err, "parse REAL measure")
			}
			return proligent.Real(parsed), nil
		}
	case proligent.MeasureDateTime.String():
		switch v := raw.(type) {
		case time.Time:
			return proligent.Timestamp(v), nil
		case string:
			t, err := proligent.ParseTimestamp(v, b.loc)
			if err != nil {
				return proligent.Value{}, err
			}
			return proligent.Timestamp(t), nil
		}
	default:
		return proligent.Value{}, perrors.Newf(perrors.ErrUnsupportedMeasureType, "unknown measure type %q", kind)
	}
	return proligent.Value{}, perrors.Newf(perrors.ErrUnsupportedMeasureType, "cannot read %T as %s", raw, strings.ToUpper(kind))
}

// scalar folds the decoders' number and date representations onto int64,
// float64 and time.Time.
func (b builder) scalar(raw any) (any, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return float64(v), nil
		}
		return int64(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrInvalidArgument, err, "parse number "+v.String())
		}
		return f, nil
	case toml.LocalDateTime:
		return v.AsTime(b.location()), nil
	case toml.LocalDate:
		return v.AsTime(b.location()), nil
	case nil:
		return nil, perrors.New(perrors.ErrUnsupportedMeasureType, "measure value is missing")
	default:
		return raw, nil
	}
}

func (b builder) location() *time.Location {
	if b.loc == nil {
		return time.Local
	}
	return b.loc
}
