package compiler

import "github.com/codeblessmax/sound-garden-0x2/vm"

// Help returns the usage line for every operator name. Editors show
// these on the status line as the cursor moves over tokens.
func Help() map[string]string {
	m := make(map[string]string)
	for _, g := range vm.Groups() {
		for _, name := range g.Ops {
			if h, ok := vm.Help(name); ok {
				m[name] = h
			}
		}
	}
	return m
}

// OpGroups returns every operator name grouped and ordered for display,
// for palettes and completion lists.
func OpGroups() []vm.OpGroup {
	return vm.Groups()
}
