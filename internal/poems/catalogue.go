package poems

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/keybeat/internal/model"
)

// DefaultKey is the poem opened when none is configured.
const DefaultKey = "road"

// Catalogue is a read-only mapping from poem key to poem.
type Catalogue struct {
	poems map[string]model.Poem
}

// Builtin returns the catalogue shipped with the binary.
func Builtin() *Catalogue {
	c := &Catalogue{poems: make(map[string]model.Poem, len(builtinPoems))}
	for _, p := range builtinPoems {
		c.poems[p.Key] = p
	}
	return c
}

// Get returns the poem stored under key.
func (c *Catalogue) Get(key string) (model.Poem, bool) {
	p, ok := c.poems[strings.TrimSpace(key)]
	return p, ok
}

// Lookup is Get with an error that lists the available keys.
func (c *Catalogue) Lookup(key string) (model.Poem, error) {
	if p, ok := c.Get(key); ok {
		return p, nil
	}
	return model.Poem{}, fmt.Errorf("unknown poem %q (available: %s)", key, strings.Join(c.Keys(), ", "))
}

// Keys returns the poem keys in sorted order.
func (c *Catalogue) Keys() []string {
	keys := make([]string, 0, len(c.poems))
	for k := range c.poems {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Next returns the key following key in sorted order, wrapping around.
func (c *Catalogue) Next(key string, delta int) string {
	keys := c.Keys()
	if len(keys) == 0 {
		return key
	}
	idx := sort.SearchStrings(keys, key)
	if idx >= len(keys) || keys[idx] != key {
		return keys[0]
	}
	idx = (idx + delta) % len(keys)
	if idx < 0 {
		idx += len(keys)
	}
	return keys[idx]
}

func (c *Catalogue) merge(other map[string]model.Poem) *Catalogue {
	merged := &Catalogue{poems: make(map[string]model.Poem, len(c.poems)+len(other))}
	for k, p := range c.poems {
		merged.poems[k] = p
	}
	for k, p := range other {
		merged.poems[k] = p
	}
	return merged
}

var builtinPoems = []model.Poem{
	{
		Key:   "road",
		Title: "The Road Not Taken",
		Text: `
Two roads diverged in a yellow wood,
And sorry I could not travel both,
And be one traveler, long I stood,
And looked down one as far as I could,
To where it bent in the undergrowth.

Then took the other, as just as fair,
And having perhaps the better claim,
Because it was grassy and wanted wear;
Though as for that the passing there
Had worn them really about the same.

And both that morning equally lay
In leaves no step had trodden black.
Oh, I kept the first for another day!
Yet knowing how way leads on to way,
I doubted if I should ever come back.

I shall be telling this with a sigh
Somewhere ages and ages hence:
Two roads diverged in a wood, and I—
I took the one less traveled by,
And that has made all the difference.
`,
	},
	{
		Key:   "dreams",
		Title: "Dreams — Langston Hughes",
		Text: `
Hold fast to dreams,
For if dreams die,
Life is a broken-winged bird
That cannot fly.

Hold fast to dreams,
For when dreams go,
Life is a barren field
Frozen with snow.
`,
	},
	{
		Key:   "hope",
		Title: "Hope is the Thing with Feathers",
		Text: `
Hope is the thing with feathers
That perches in the soul,
And sings the tune without the words,
And never stops at all.

And sweetest in the gale is heard;
And sore must be the storm
That could abash the little bird
That kept so many warm.

I've heard it in the chillest land,
And on the strangest sea;
Yet, never, in extremity,
It asked a crumb of me.
`,
	},
	{
		Key:   "invictus",
		Title: "Invictus (Full)",
		Text: `
Out of the night that covers me,
Black as the pit from pole to pole,
I thank whatever gods may be
For my unconquerable soul.

In the fell clutch of circumstance
I have not winced nor cried aloud.
Under the bludgeonings of chance
My head is bloody, but unbowed.

Beyond this place of wrath and tears
Looms but the Horror of the shade,
And yet the menace of the years
Finds, and shall find, me unafraid.

It matters not how strait the gate,
How charged with punishments the scroll,
I am the master of my fate:
I am the captain of my soul.
`,
	},
}
