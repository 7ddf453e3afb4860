package services

import (
	"context"
)

// Selection ist das Ergebnis einer Dateiauswahl. Genau eines der Felder ist
// gesetzt; eine nil-Selection bedeutet Abbruch durch den Benutzer.
type Selection struct {
	Path string
	URL  string
}

// Picker liefert null oder eine Dateiauswahl. PickFile blockiert nur die
// aufrufende Goroutine, bis der Benutzer reagiert oder der Context endet.
type Picker interface {
	PickFile(ctx context.Context) (*Selection, error)
}

// dialogPicker überbrückt eine Callback-basierte Dialog-API in einen
// Einmal-Kanal, auf den die anfragende Goroutine wartet.
type dialogPicker struct {
	open func(done func(*Selection))
}

// NewDialogPicker kapselt einen Callback-Dialog als Picker. Der Callback
// darf höchstens einmal aufgerufen werden.
func NewDialogPicker(open func(done func(*Selection))) Picker {
	return &dialogPicker{open: open}
}

func (p *dialogPicker) PickFile(ctx context.Context) (*Selection, error) {
	result := make(chan *Selection, 1)
	p.open(func(sel *Selection) {
		result <- sel
	})
	select {
	case sel := <-result:
		return sel, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fixedPicker liefert eine vorgegebene Auswahl; wird von der HTTP-Schicht
// (Pfad aus dem Request) und in Tests verwendet.
type fixedPicker struct {
	sel *Selection
}

// FixedPicker gibt bei jedem Aufruf dieselbe Auswahl zurück. Mit nil
// modelliert er den Abbruch-Fall.
func FixedPicker(sel *Selection) Picker {
	return &fixedPicker{sel: sel}
}

func (p *fixedPicker) PickFile(ctx context.Context) (*Selection, error) {
	return p.sel, nil
}
