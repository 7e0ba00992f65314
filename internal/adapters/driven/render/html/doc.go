// Package html renders compiled documents as standalone HTML pages.
// Templates and CSS themes are embedded, so rendered output has no
// runtime file dependencies. Annotation spans become hover popovers
// anchored for cross-referencing from the generated annotation cards.
package html
