package aspen

// Synthetic pointer input. Injected events queue up and drain one per tick,
// passing through DispatchPointer exactly like host input, so scripted
// interaction exercises the same picking and bubbling paths a real pointer
// would. Coordinates are logical points.

// InjectPress queues a left-button press at (x, y).
func (st *State) InjectPress(x, y float64) {
	st.injected = append(st.injected, PointerEvent{Kind: EventPointerDown, X: x, Y: y, Button: MouseButtonLeft})
}

// InjectMove queues a pointer move to (x, y).
func (st *State) InjectMove(x, y float64) {
	st.injected = append(st.injected, PointerEvent{Kind: EventPointerMove, X: x, Y: y})
}

// InjectRelease queues a left-button release at (x, y).
func (st *State) InjectRelease(x, y float64) {
	st.injected = append(st.injected, PointerEvent{Kind: EventPointerUp, X: x, Y: y, Button: MouseButtonLeft})
}

// InjectClick queues a press followed by a release at (x, y). Consumes
// two ticks; the pair lands on the same objects, so onClick handlers fire.
func (st *State) InjectClick(x, y float64) {
	st.InjectPress(x, y)
	st.InjectRelease(x, y)
}

// InjectDrag queues a press at the from point, interpolated moves, and a
// release at the to point, spread over ticks. Fewer than 2 ticks clamps
// to press-then-release.
func (st *State) InjectDrag(fromX, fromY, toX, toY float64, ticks int) {
	if ticks < 2 {
		ticks = 2
	}
	st.InjectPress(fromX, fromY)
	steps := ticks - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		st.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	st.InjectRelease(toX, toY)
}

// InjectPointer queues an arbitrary pointer event.
func (st *State) InjectPointer(ev PointerEvent) {
	st.injected = append(st.injected, ev)
}

// drainInjected dispatches the oldest queued event. One event per tick
// keeps each dispatch paired with a render, matching real input cadence.
func (st *State) drainInjected() {
	if len(st.injected) == 0 {
		return
	}
	ev := st.injected[0]
	copy(st.injected, st.injected[1:])
	st.injected = st.injected[:len(st.injected)-1]
	st.DispatchPointer(ev)
}

// InjectPending reports how many injected events have not dispatched yet.
func (st *State) InjectPending() int { return len(st.injected) }
