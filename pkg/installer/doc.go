// Package installer models guided installers and runs them.
//
// A Config is a sequence of pages, each holding groups of options. Options
// set flags when selected; predicates over those flags decide which pages
// and options are visible and which conditional installs apply. Configs
// come from FOMOD ModuleConfig.xml files (ParseModuleConfig) or are built
// directly and checked with Validate.
//
// A Wizard walks a Config page by page. When it completes, Resolve turns
// the selections into an ordered install list and Materialize copies the
// chosen files out of the raw mod tree. Nothing here touches the load
// order.
package installer
