package prep

import (
	"context"
	"sort"
	"sync"

	"github.com/dailyforge/dailies-api/internal/dailies"
	"github.com/dailyforge/dailies-api/internal/entities"
	"github.com/dailyforge/dailies-api/internal/errors"
	"github.com/dailyforge/dailies-api/internal/uniqueness"
)

// preparedDaily caches one daily's per-render results for
// process-time reuse within the same session.
type preparedDaily struct {
	daily  *dailies.Daily
	label  string
	custom dailies.Custom
	rows   []dailies.Row
}

// prepareDailies resolves label, custom context, and rows for every
// enabled daily. All dailies are prepared concurrently behind a
// single joined wait.
func (o *Orchestrator) prepareDailies(ctx context.Context, actor *entities.Actor, disabled []string) ([]*preparedDaily, error) {
	enabled := o.registry.Enabled(disabled)
	prepared := make([]*preparedDaily, len(enabled))
	errs := make([]error, len(enabled))

	var wg sync.WaitGroup
	for i, daily := range enabled {
		wg.Add(1)
		go func(i int, daily *dailies.Daily) {
			defer wg.Done()
			p := &preparedDaily{
				daily: daily,
				label: daily.ResolveLabel(actor),
			}
			if daily.Prepare != nil {
				custom, err := daily.Prepare(ctx, actor)
				if err != nil {
					errs[i] = errors.Wrapf(err, "failed to prepare daily %s", daily.Key)
					return
				}
				p.custom = custom
			}
			rows, err := daily.Rows(ctx, actor, p.custom)
			if err != nil {
				errs[i] = errors.Wrapf(err, "failed to resolve rows for daily %s", daily.Key)
				return
			}
			p.rows = rows
			prepared[i] = p
		}(i, daily)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return prepared, nil
}

// buildTemplate renders the prepared dailies into the form model.
func buildTemplate(prepared []*preparedDaily, state *dailies.State) *dailies.Template {
	template := &dailies.Template{}
	total := 0

	for _, p := range prepared {
		var rendered []*dailies.RenderedRow
		alerts := 0
		for _, row := range p.rows {
			if row.Condition == dailies.ConditionHidden {
				continue
			}
			rr := renderRow(p, row, state)
			if rr.Type == dailies.RowTypeAlert {
				alerts++
				template.HasAlert = true
			}
			rendered = append(rendered, rr)
		}
		if len(rendered) == 0 {
			continue
		}
		total += len(rendered)

		// A daily collapsing to exactly one non-alert row is
		// flattened: the row adopts the daily's label and is
		// interleaved with other single-row dailies by priority.
		if len(rendered) == 1 && alerts == 0 {
			rendered[0].Label = p.label
			template.Rows = append(template.Rows, rendered[0])
			continue
		}
		template.Groups = append(template.Groups, &dailies.RenderedGroup{
			DailyKey: p.daily.Key,
			Label:    p.label,
			Rows:     rendered,
		})
	}

	sort.SliceStable(template.Rows, func(i, j int) bool {
		return template.Rows[i].Order > template.Rows[j].Order
	})
	sort.SliceStable(template.Groups, func(i, j int) bool {
		return len(template.Groups[i].Rows) < len(template.Groups[j].Rows)
	})

	template.CanAccept = total > 0 && !template.HasAlert
	resolveUniqueGroups(template)
	return template
}

// renderRow renders one row definition, rehydrating any persisted
// value of matching shape.
func renderRow(p *preparedDaily, row dailies.Row, state *dailies.State) *dailies.RenderedRow {
	rr := &dailies.RenderedRow{
		DailyKey: p.daily.Key,
		Slug:     row.Slug,
		Label:    row.Label,
		Type:     row.Type(),
		Order:    row.DisplayOrder(),
		Save:     row.Save,
	}

	if row.Save {
		saved := state.Saved(p.daily.Key, row.Slug)
		if saved != nil && (dailies.SavedValue{Value: saved}).Matches(rr.Type) {
			rr.Value = saved
		}
	}

	switch data := row.Data.(type) {
	case dailies.SelectData:
		rr.Options = renderOptions(data.Options)
		rr.UniqueTag = data.Unique
		rr.SelectedIndex = selectedIndex(rr.Options, rr.Value)
	case dailies.RandomData:
		rr.Options = renderOptions(data.Options)
		rr.UniqueTag = data.Unique
	case dailies.ComboData:
		rr.Options = renderOptions(data.Options)
		rr.UniqueTag = data.Unique
		rr.FreeText = data.FreeText
		if combo, ok := rr.Value.(dailies.ComboValue); ok && combo.Input == "" {
			rr.SelectedIndex = selectedIndexValue(rr.Options, combo.Selected)
		}
	case dailies.AlertData:
		rr.Message = data.Message
	case dailies.InputData:
		rr.Placeholder = data.Placeholder
	case dailies.NotifyData:
		rr.Message = data.Message
	case dailies.DropData:
		rr.Filter = data.Filter
		if data.Filter != nil {
			rr.FilterKind = data.Filter.Kind
		}
		rr.Note = data.Note
	}
	return rr
}

// renderOptions renders the option list, closing any still-open
// group before starting a new one and after the list ends.
func renderOptions(options []dailies.Option) []dailies.RenderedOption {
	var out []dailies.RenderedOption
	open := false
	for _, opt := range options {
		if opt.IsGroup() {
			if open {
				out = append(out, dailies.RenderedOption{GroupEnd: true})
			}
			out = append(out, dailies.RenderedOption{GroupStart: true, Label: opt.Group})
			open = true
			continue
		}
		out = append(out, dailies.RenderedOption{
			Value:      opt.Value,
			Label:      opt.Label,
			Unique:     opt.Unique,
			SkipUnique: opt.SkipUnique,
		})
	}
	if open {
		out = append(out, dailies.RenderedOption{GroupEnd: true})
	}
	return out
}

// selectedIndex finds the entry matching the rehydrated value, else
// the first real option.
func selectedIndex(options []dailies.RenderedOption, value dailies.Value) int {
	want := ""
	if sv, ok := value.(dailies.StringValue); ok {
		want = sv.String()
	}
	return selectedIndexValue(options, want)
}

func selectedIndexValue(options []dailies.RenderedOption, want string) int {
	first := -1
	for i, opt := range options {
		if opt.GroupStart || opt.GroupEnd {
			continue
		}
		if first < 0 {
			first = i
		}
		if want != "" && opt.Value == want {
			return i
		}
	}
	if first < 0 {
		return 0
	}
	return first
}

// resolveUniqueGroups normalizes stale persisted conflicts across
// every unique tag once per build, in display order.
func resolveUniqueGroups(template *dailies.Template) {
	tags := make(map[string][]*dailies.RenderedRow)
	var order []string
	for _, row := range template.AllRows() {
		if row.UniqueTag == "" {
			continue
		}
		if row.Type != dailies.RowTypeSelect && row.Type != dailies.RowTypeCombo {
			continue
		}
		if _, seen := tags[row.UniqueTag]; !seen {
			order = append(order, row.UniqueTag)
		}
		tags[row.UniqueTag] = append(tags[row.UniqueTag], row)
	}

	for _, tag := range order {
		resolveTag(tags[tag])
	}
}

// resolveTag runs the uniqueness resolver over one tag's rows and
// writes the outcome back into the rendered rows.
func resolveTag(rows []*dailies.RenderedRow) {
	elements := make([]*uniqueness.Element, len(rows))
	indexMaps := make([][]int, len(rows))

	for i, row := range rows {
		var opts []uniqueness.Option
		var indexes []int
		selected := 0
		for j, opt := range row.Options {
			if opt.GroupStart || opt.GroupEnd {
				continue
			}
			if j == row.SelectedIndex {
				selected = len(opts)
			}
			opts = append(opts, uniqueness.Option{
				Value:  opt.Value,
				Unique: opt.Unique,
				Exempt: opt.SkipUnique,
			})
			indexes = append(indexes, j)
		}
		elements[i] = &uniqueness.Element{Options: opts, Selected: selected}
		indexMaps[i] = indexes
	}

	uniqueness.Resolve(elements)

	for i, row := range rows {
		el := elements[i]
		if len(indexMaps[i]) == 0 {
			continue
		}
		newIndex := indexMaps[i][el.Selected]
		if newIndex != row.SelectedIndex {
			row.SelectedIndex = newIndex
			// The persisted selection conflicted; reassignment
			// replaces the rehydrated value.
			switch row.Type {
			case dailies.RowTypeSelect:
				row.Value = dailies.StringValue(row.Options[newIndex].Value)
			case dailies.RowTypeCombo:
				row.Value = dailies.ComboValue{Selected: row.Options[newIndex].Value}
			}
		}
		for j, disabled := range el.Disabled {
			row.Options[indexMaps[i][j]].Disabled = disabled
		}
	}
}
