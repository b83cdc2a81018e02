// Package loadorder holds the ordered mod and plugin sequences of a game
// and the mutations a user can apply to them.
//
// Both sequences keep Index equal to position at all times. A plugin is
// listed for as long as some mod provides it; its effective activation is
// its own flag AND the activation of a mod that provides it, so turning a
// mod off hides its plugins without touching their flags or positions.
package loadorder
