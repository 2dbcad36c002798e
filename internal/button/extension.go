package button

// Extension adds behaviour to a Button without changing the classifier.
// Hooks run synchronously inside Update: OnPress after the pressed handler,
// OnRelease after the release bookkeeping, OnUpdate once per enabled
// Update between edge handling and the timed evaluations.
type Extension interface {
	OnPress(b *Button)
	OnRelease(b *Button)
	OnUpdate(b *Button)
}

// NopExtension is the default hook.
type NopExtension struct{}

func (NopExtension) OnPress(*Button)   {}
func (NopExtension) OnRelease(*Button) {}
func (NopExtension) OnUpdate(*Button)  {}

// Cycler turns a button into a multi-state switch: every short press
// advances UserState through 0..States-1. Holds longer than the long click
// duration leave the state alone.
type Cycler struct {
	States uint
}

func (c Cycler) OnPress(*Button)  {}
func (c Cycler) OnUpdate(*Button) {}

func (c Cycler) OnRelease(b *Button) {
	if c.States == 0 || b.PreviousDuration() > b.LongClickDuration() {
		return
	}
	b.SetUserState((b.UserState() + 1) % c.States)
}
