// Package settings persists the user's merge settings in a kvstore.Store.
//
// Three slots are kept, each as JSON under its own key: the named body
// templates (one map under KeyTemplates), the last saved configuration
// (KeyConfig) and the configuration snapshot taken when a run is scheduled
// (KeySchedule). The snapshot is separate from the saved configuration so
// that editing settings after scheduling does not change what the scheduled
// run sends.
package settings
