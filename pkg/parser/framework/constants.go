// Package framework describes JsTestDriver project configuration: the
// jsTestDriver.conf file and the set of files it puts in scope.
package framework

// Priority constants order strategies in the registry.
// Higher priority strategies are asked first.
const (
	// PriorityGeneric is for strategies that match on broad patterns.
	PriorityGeneric = 100

	// PrioritySpecialized is for strategies whose content pattern is unique
	// enough to win over generic ones.
	PrioritySpecialized = 200
)

// FrameworkJsTestDriver is the framework name recorded in every test file.
const FrameworkJsTestDriver = "jstestdriver"

// ConfigFileName is the configuration file JsTestDriver reads by default.
const ConfigFileName = "jsTestDriver.conf"
