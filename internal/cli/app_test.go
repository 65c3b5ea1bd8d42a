// pattern: Functional Core
package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestApp_PrintHelp_ShowsCommandsAndGroups(t *testing.T) {
	app := BuildApp("1.0.0", "")

	buf := &bytes.Buffer{}
	app.PrintHelp(buf)

	output := buf.String()
	if output == "" {
		t.Fatal("PrintHelp produced no output")
	}

	for _, want := range []string{"sync", "validate", "status", "version", "template", "Command Groups"} {
		if !strings.Contains(output, want) {
			t.Errorf("Help missing %q", want)
		}
	}
}

func TestApp_Execute_NoArgs_ReturnsTrueForTUI(t *testing.T) {
	app := NewApp("1.0.0")
	result := app.Execute(nil)
	if !result {
		t.Errorf("Execute(nil) returned %v, want true", result)
	}
}

func TestApp_Execute_UngroupedCommand_Dispatches(t *testing.T) {
	app := NewApp("1.0.0")
	called := false
	app.AddCommand(&Command{
		Name:    "validate",
		Summary: "Check the manifest",
		Usage:   "Usage: vmapps validate",
		Run: func(args []string) error {
			called = true
			return nil
		},
	})

	result := app.Execute([]string{"validate"})
	if result {
		t.Errorf("Execute with command returned %v, want false", result)
	}
	if !called {
		t.Errorf("Command Run was not called")
	}
}

func TestApp_Execute_GroupCommand_Dispatches(t *testing.T) {
	app := NewApp("1.0.0")
	group := app.AddGroup("template", "Manage the base template checkout")

	called := false
	passedArgs := []string(nil)
	group.AddCommand(&Command{
		Name:    "fetch",
		Summary: "Clone the base template checkout",
		Usage:   "Usage: vmapps template fetch",
		Run: func(args []string) error {
			called = true
			passedArgs = args
			return nil
		},
	})

	result := app.Execute([]string{"template", "fetch", "--force"})
	if result {
		t.Errorf("Execute with group command returned %v, want false", result)
	}
	if !called {
		t.Errorf("Command Run was not called")
	}
	if len(passedArgs) != 1 || passedArgs[0] != "--force" {
		t.Errorf("Command received args %v, want [--force]", passedArgs)
	}
}

func TestApp_Execute_GroupHelp_PrintsGroupCommands(t *testing.T) {
	group := &Group{
		Name:    "template",
		Summary: "Manage the base template checkout",
		Commands: map[string]*Command{
			"fetch": {Name: "fetch", Summary: "Clone the base template checkout"},
			"show":  {Name: "show", Summary: "Print the resolved template source"},
		},
	}

	buf := &bytes.Buffer{}
	group.PrintHelp(buf)

	output := buf.String()
	for _, want := range []string{"fetch", "show", "vmapps template"} {
		if !strings.Contains(output, want) {
			t.Errorf("Group help missing %q", want)
		}
	}
}

func TestBuildApp_RegistersTemplateGroup(t *testing.T) {
	app := BuildApp("1.0.0", "")

	group, ok := app.groups["template"]
	if !ok {
		t.Fatal("template group not registered")
	}
	for _, name := range []string{"fetch", "show"} {
		if _, ok := group.Commands[name]; !ok {
			t.Errorf("template group missing %q command", name)
		}
	}
}
