// Package progress tracks which phrases the learner knows.
//
// The Overlay collects "known" toggles made during a run and is the final
// authority over the status of the records it mentions. It must be
// reconciled into a store before that store is merged or saved, otherwise
// the toggles are lost.
package progress
