// motionloop - prompt-driven motion generation and discovery registry service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chiku524/motionloop

package namealloc

// starts and ends are combined to synthesize a two-part semantic name. A
// combination is rejected when start's last character equals end's first
// character (avoids doubled letters like "mistt").
var starts = []string{
	"Aurora", "Blaze", "Cascade", "Drift", "Ember", "Flicker", "Glow", "Haze",
	"Ignis", "Jade", "Kindle", "Lumen", "Mirage", "Nebula", "Opal", "Pulse",
	"Quiet", "Ripple", "Shimmer", "Thaw", "Umbra", "Vapor", "Whisper", "Zenith",
	"Amber", "Birch", "Coral", "Dusk", "Echo", "Frost", "Gale", "Harbor",
	"Indigo", "Juniper", "Kelp", "Lantern", "Meadow", "Nimbus", "Onyx", "Petal",
	"Quartz", "Reed", "Spire", "Tidal", "Undertow", "Vesper", "Willow", "Xylo",
	"Yarrow", "Zephyr", "Copper", "Dawn", "Ferrous", "Granite", "Hollow",
}

var ends = []string{
	"light", "shade", "fall", "song", "wave", "glow", "mist", "bloom", "drift",
	"spark", "tide", "veil", "hush", "bound", "run", "path", "reach", "edge",
	"field", "grove", "hollow", "flow", "bend", "cove", "peak", "rise", "cast",
	"gleam", "trail", "burst", "current", "echo", "frond", "glint", "haven",
	"knot", "loom", "marsh", "notch", "orbit", "plume", "quill", "ridge",
	"streak", "tangle", "vale",
}

// vocabulary is the fallback single-word pool used when combination fails.
var vocabulary = []string{
	"cobalt", "saffron", "marigold", "umber", "sienna", "verdigris", "cerulean",
	"mauve", "chartreuse", "vermilion", "ochre", "periwinkle", "slate", "moss",
	"rust", "ivory", "obsidian", "garnet", "topaz", "quartz", "amethyst",
	"cinder", "ash", "dune", "fjord", "glacier", "harbor", "island", "jetty",
	"knoll", "lagoon", "meadow", "nook", "oasis", "prairie", "quarry", "reef",
	"summit", "terrace", "valley", "wetland", "brook", "canyon", "delta",
	"estuary", "foothill", "glen", "highland", "isthmus", "kettle", "ledge",
	"moor", "notch", "overlook", "plateau", "quay", "ridgeline", "shoal",
	"thicket", "upland", "vista", "waterfall", "basin", "crag", "dell",
	"escarpment", "floodplain", "gorge", "hillock", "inlet", "junction",
	"knob", "lowland", "mesa", "nave", "outcrop", "promontory", "quadrant",
}

// rgbHintFamilies maps a deterministic RGB bucket to a curated vocabulary
// subset, used by rgb_to_semantic_color_name.
var rgbHintFamilies = map[string][]string{
	"shadow":   {"umber", "obsidian", "cinder", "ash", "slate"},
	"graphite": {"slate", "ash", "quartz", "cinder"},
	"slate":    {"slate", "quartz", "overlook", "ridgeline"},
	"mist":     {"fjord", "glacier", "vista", "highland"},
	"ember":    {"rust", "sienna", "vermilion", "garnet"},
	"sunset":   {"marigold", "saffron", "ochre", "vermilion"},
	"rust":     {"rust", "sienna", "umber", "ochre"},
	"moss":     {"moss", "verdigris", "thicket", "glen"},
	"forest":   {"moss", "glen", "thicket", "knoll"},
	"olive":    {"moss", "chartreuse", "prairie"},
	"teal":     {"cerulean", "lagoon", "estuary", "reef"},
	"violet":   {"amethyst", "mauve", "periwinkle"},
	"ocean":    {"fjord", "lagoon", "reef", "estuary"},
	"midnight": {"obsidian", "cinder", "umber"},
	"neutral":  {"ivory", "quartz", "dune", "nook"},
}
