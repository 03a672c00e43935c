package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/2beens/gymlog/internal/routines"
	"github.com/2beens/gymlog/internal/workoutlog"
	"github.com/2beens/gymlog/internal/workouts"
)

type routinesLister interface {
	Routines(ctx context.Context) ([]routines.Routine, error)
}

type restClock interface {
	Start()
	Reset()
	Elapsed() int
}

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in *bufio.Reader, out io.Writer) *prompter {
	return &prompter{in: in, out: out}
}

func (p *prompter) say(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

// ask reads one line. An empty answer keeps def.
func (p *prompter) ask(label, def string) string {
	if def != "" {
		_, _ = fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		_, _ = fmt.Fprintf(p.out, "%s: ", label)
	}

	// io.EOF still hands back the partial line
	line, _ := p.in.ReadString('\n')
	if line = strings.TrimSpace(line); line == "" {
		return def
	}
	return line
}

func (p *prompter) pickRoutine(ctx context.Context, lister routinesLister) (int, error) {
	list, err := lister.Routines(ctx)
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		return 0, fmt.Errorf("no routines found")
	}

	for _, r := range list {
		p.say("  %d) %s (%d ejercicios)", r.ID, r.Name, len(r.Exercises))
	}
	answer := p.ask("Rutina", strconv.Itoa(list[0].ID))
	id, err := strconv.Atoi(answer)
	if err != nil {
		return 0, fmt.Errorf("invalid routine id %q", answer)
	}
	return id, nil
}

// fillForm walks the sets in order, asking for weight and reps. The rest clock restarts
// after every set and its reading becomes the rest of the next one.
func (p *prompter) fillForm(form workoutlog.LogForm, clock restClock) workoutlog.LogForm {
	p.say("%s: %d series", form.RoutineName, form.TotalSets())

	resting := false
	for ei, exercise := range form.Exercises {
		header := exercise.ExerciseName
		if exercise.TargetLabel != "" {
			header += " (" + exercise.TargetLabel + ")"
		}
		p.say("== %s", header)

		for si := range exercise.Sets {
			if resting {
				form = workoutlog.EditSet(form, ei, si, workoutlog.FieldRestSeconds, strconv.Itoa(clock.Elapsed()))
			}
			form = p.askSet(form, ei, si)
			clock.Reset()
			clock.Start()
			resting = true
		}
	}

	return form
}

func (p *prompter) askSet(form workoutlog.LogForm, exerciseIdx, setIdx int) workoutlog.LogForm {
	set := form.Exercises[exerciseIdx].Sets[setIdx]
	label := fmt.Sprintf("  serie %d", setIdx+1)

	form = workoutlog.EditSet(form, exerciseIdx, setIdx, workoutlog.FieldWeight, p.ask(label+" peso", set.Weight))
	form = workoutlog.EditSet(form, exerciseIdx, setIdx, workoutlog.FieldReps, p.ask(label+" reps", set.Reps))
	return form
}

// fixSet asks again for the field the validation error points at.
func (p *prompter) fixSet(form workoutlog.LogForm, kind workoutlog.ErrorKind, exerciseIdx, setIdx int) workoutlog.LogForm {
	if exerciseIdx < 0 || exerciseIdx >= len(form.Exercises) {
		return form
	}
	if setIdx < 0 || setIdx >= len(form.Exercises[exerciseIdx].Sets) {
		return form
	}
	p.say("== %s", form.Exercises[exerciseIdx].ExerciseName)

	set := form.Exercises[exerciseIdx].Sets[setIdx]
	label := fmt.Sprintf("  serie %d", setIdx+1)
	switch kind {
	case workoutlog.KindInvalidWeight:
		return workoutlog.EditSet(form, exerciseIdx, setIdx, workoutlog.FieldWeight, p.ask(label+" peso", set.Weight))
	case workoutlog.KindInvalidReps:
		return workoutlog.EditSet(form, exerciseIdx, setIdx, workoutlog.FieldReps, p.ask(label+" reps", set.Reps))
	case workoutlog.KindInvalidRest:
		return workoutlog.EditSet(form, exerciseIdx, setIdx, workoutlog.FieldRestSeconds, p.ask(label+" descanso (s)", set.RestSeconds))
	}
	return p.askSet(form, exerciseIdx, setIdx)
}

func (p *prompter) printSummary(summary *workouts.Summary) {
	p.say("Entrenamiento #%d guardado: %s", summary.WorkoutID, summary.RoutineName)
	if summary.DurationSeconds != nil {
		p.say("Duración: %d min", *summary.DurationSeconds/60)
	}
	p.say("Series: %d, volumen total: %.1f kg", summary.TotalSets, summary.TotalVolume)
	for _, group := range summary.Exercises {
		p.say("  %s: %d series, %.1f kg", group.ExerciseName, len(group.Sets), group.Volume)
	}
}
