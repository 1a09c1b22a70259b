package compare

import "strings"

// Default exclusion rules per edition. These are starting points for the
// caller's active rule set, which stays user-editable; they are never
// applied implicitly.

// DefaultJavaRules returns the default Java texture blacklist.
func DefaultJavaRules() []string {
	return []string{
		`_MACOSX`,
		`assets\/minecraft\/textures\/ctm`,
		`assets\/minecraft\/textures\/custom`,
		`textures\/colormap`,
		`background\/panorama_overlay.png`,
		`assets\/minecraft\/textures\/environment\/clouds.png`,
		`assets\/minecraft\/textures\/trims\/color_palettes`,
		`assets\/minecraft\/textures\/gui\/presets`,
		`assets\/minecraft\/textures\/entity\/llama\/spit.png`,
		`assets\/minecraft\/textures\/block\/lightning_rod_on.png`,
	}
}

// DefaultBedrockRules returns the default Bedrock texture blacklist.
func DefaultBedrockRules() []string {
	return []string{
		`_MACOSX`,
		`texts\/`,
		`textures\/persona_thumbnails`,
		`textures\/colormap`,
		`textures\/trims\/color_palettes`,
		`textures\/environment\/clouds.png`,
		`textures\/environment\/end_portal_colors.png`,
		`textures\/entity\/horse\/armor\/horse_armor_none.png`,
		`textures\/entity\/horse\/horse_markings_none.png`,
		`textures\/entity\/horse2\/armor\/horse_armor_none.png`,
		`textures\/entity\/horse2\/horse_markings_none.png`,
		`textures\/entity\/iron_golem\/cracked_none.png`,
		`textures\/entity\/llama\/decor\/decor_none.png`,
		`textures\/entity\/llama\/spit.png`,
		`textures\/entity\/lead_rope.png`,
		`textures\/entity\/loyalty_rope.png`,
		`textures\/entity\/cape_invisible.png`,
		`textures\/entity\/zombie_villager2\/professions\/unskilled.tga`,
	}
}

// Options materializes the optional exclusion toggles into extra rules,
// appended to whatever active rule set the caller maintains.
type Options struct {
	ExcludeRealms               bool
	ExcludeFonts                bool
	ExcludeMisc                 bool
	ExcludeOptifine             bool
	ExcludeNonVanillaNamespaces bool
	ExcludeEmissives            bool
	ExcludeTitleGui             bool
	ExcludeBedrockUI            bool
}

// JavaRules returns the additional Java rules enabled by the options.
func (o Options) JavaRules() []string {
	var rules []string
	if o.ExcludeRealms {
		rules = append(rules, `assets\/realms`, `assets\/minecraft\/textures\/gui\/realms`)
	}
	if o.ExcludeFonts {
		rules = append(rules, `textures\/font`)
	}
	if o.ExcludeMisc {
		rules = append(rules, `textures\/misc`)
	}
	if o.ExcludeOptifine {
		rules = append(rules, `assets\/minecraft\/optifine`)
	}
	if o.ExcludeEmissives {
		rules = append(rules, `textures\/.+\/.+_e(missive)?\.png`)
	}
	if o.ExcludeTitleGui {
		rules = append(rules, `assets\/minecraft\/textures\/gui\/title`)
	}
	return rules
}

// NonVanillaNamespace reports whether path lives under a Java asset
// namespace other than minecraft or realms. RE2 cannot express this as an
// exclusion pattern, so the toggle works as a pre-filter instead.
func NonVanillaNamespace(path string) bool {
	rest, ok := strings.CutPrefix(path, "assets/")
	if !ok {
		return false
	}
	ns := rest
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		ns = rest[:i]
	}
	return ns != "minecraft" && ns != "realms"
}

// FilterJava applies the non-regex Java toggles. Run it over both file
// lists before Compare when ExcludeNonVanillaNamespaces is set.
func (o Options) FilterJava(files []string) []string {
	if !o.ExcludeNonVanillaNamespaces {
		return files
	}
	kept := make([]string, 0, len(files))
	for _, f := range files {
		if !NonVanillaNamespace(f) {
			kept = append(kept, f)
		}
	}
	return kept
}

// BedrockRules returns the additional Bedrock rules enabled by the options.
func (o Options) BedrockRules() []string {
	var rules []string
	if o.ExcludeFonts {
		rules = append(rules, `font\/`)
	}
	if o.ExcludeMisc {
		rules = append(rules, `textures\/misc`)
	}
	if o.ExcludeBedrockUI {
		rules = append(rules, `textures\/gui`, `textures\/ui`)
	}
	return rules
}
