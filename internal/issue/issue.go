// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

type Id int

const (
	ResourceNotFoundId Id = iota + 1
	ResourceParseErrorId
	CommandNotFoundId
	InvalidDefinitionId
	InvalidValueId
	TypeConflictId
	ImportCycleId
	RegistryFetchFailedId
	InstallFailedId
	MethodFailedId
	ConfigLoadFailedId
	ResourceExistsId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Markdown returns the message followed by a "See also" list of links.
func (i *Issue) Markdown() string {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			sb.WriteString("- <" + string(link) + ">\n")
		}
	}
	return sb.String()
}

func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

const docsURL HttpLink = "https://github.com/resdir/run/blob/main/README.md"

var (
	render = glamour.Render

	resourceNotFoundIssue = &Issue{
		id:       ResourceNotFoundId,
		docLinks: []HttpLink{docsURL},
		mdMsg: `
# No resource found!

We looked for a resource file but couldn't find one.

## Resource files (in order of precedence):
1. ` + "`@resource.json5`" + `
2. ` + "`@resource.json`" + `
3. ` + "`@resource.yaml`" + `
4. ` + "`@resource.yml`" + `

The current directory is searched first, then each parent directory.

## Things you can try:
- Create a resource in the current directory:
~~~
$ run @create --type=resource
~~~

- Point to a resource explicitly:
~~~
$ run --resource ./path/to/project <command>
~~~`,
	}

	resourceParseErrorIssue = &Issue{
		id:       ResourceParseErrorId,
		docLinks: []HttpLink{docsURL},
		mdMsg: `
# Failed to parse the resource file!

The resource file is not valid JSON5 or YAML.

## Things you can try:
- Check the error message above for the line and column
- Re-save the file in canonical form once it parses:
~~~
$ run @normalize
~~~`,
	}

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command not found!

The resource has no child, alias or built-in command with that name.

## Things you can try:
- Show what the resource offers:
~~~
$ run describe
~~~

- Check for typos in the command name
- Built-in commands start with @, for example ` + "`@print`" + ` or ` + "`@install`",
	}

	invalidDefinitionIssue = &Issue{
		id:       InvalidDefinitionId,
		docLinks: []HttpLink{docsURL},
		mdMsg: `
# Invalid resource definition!

A definition key has the wrong shape, or two keys cannot be used together.

## Common issues:
- ` + "`@load`" + ` combined with ` + "`@implementation`" + `
- ` + "`@type`" + ` and ` + "`@import`" + ` given as something other than a string, mapping or list
- An imported resource without ` + "`@export`",
	}

	invalidValueIssue = &Issue{
		id: InvalidValueId,
		mdMsg: `
# Invalid value!

An attribute or argument did not pass validation.

## Rules:
- ` + "`@id`" + ` is ` + "`namespace/name`" + `; both parts use letters, digits, ` + "`.`" + `, ` + "`_`" + ` and ` + "`-`" + `
- ` + "`@version`" + ` is a semantic version such as ` + "`1.2.3`" + `
- ` + "`@position`" + ` is a non-negative integer
- ` + "`@runtime`" + ` is ` + "`name@range`" + `, for example ` + "`node@>=6.10`",
	}

	typeConflictIssue = &Issue{
		id: TypeConflictId,
		mdMsg: `
# Incompatible types!

A resource cannot inherit from two types when neither contains the other,
for example a ` + "`string`" + ` and a ` + "`method`" + `.

## Things you can try:
- Keep only one of the conflicting entries in ` + "`@type`" + ` / ` + "`@import`" + `
- Move one of them to a child resource`,
	}

	importCycleIssue = &Issue{
		id: ImportCycleId,
		mdMsg: `
# Import cycle detected!

Resources import each other in a loop. The chain is shown in the error above.

## Things you can try:
- Extract the shared part into a third resource that both import`,
	}

	registryFetchFailedIssue = &Issue{
		id: RegistryFetchFailedId,
		mdMsg: `
# Failed to fetch the resource from the registry!

## Things you can try:
- Check your network connection
- Check the registry URL template:
~~~
$ run config show
~~~

- Use a local copy while developing:
~~~
$ export RUN_LOCAL_RESOURCES=~/projects/resources
~~~`,
	}

	installFailedIssue = &Issue{
		id: InstallFailedId,
		mdMsg: `
# Installation failed!

The resource was fetched but its ` + "`@install`" + ` step failed. It will be retried
on the next use.

## Things you can try:
- Run with verbose mode for more details:
~~~
$ run --verbose <command>
~~~`,
	}

	methodFailedIssue = &Issue{
		id: MethodFailedId,
		mdMsg: `
# Method failed!

The method body (` + "`@run`" + `) exited with a non-zero status.

## Things you can try:
- Check the output above for the failing command
- Run the script by hand from the resource directory`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Check ` + "`config.cue`" + ` for CUE syntax errors
- Print the defaults to compare:
~~~
$ run config show
~~~`,
	}

	resourceExistsIssue = &Issue{
		id: ResourceExistsId,
		mdMsg: `
# A resource already exists here!

` + "`@create`" + ` refuses to overwrite an existing resource file.

## Things you can try:
- Create the resource in an empty directory
- Edit the existing resource instead`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Things you can try:
- Check file and directory permissions
- Run from a directory you own`,
	}

	issues = map[Id]*Issue{
		resourceNotFoundIssue.Id():    resourceNotFoundIssue,
		resourceParseErrorIssue.Id():  resourceParseErrorIssue,
		commandNotFoundIssue.Id():     commandNotFoundIssue,
		invalidDefinitionIssue.Id():   invalidDefinitionIssue,
		invalidValueIssue.Id():        invalidValueIssue,
		typeConflictIssue.Id():        typeConflictIssue,
		importCycleIssue.Id():         importCycleIssue,
		registryFetchFailedIssue.Id(): registryFetchFailedIssue,
		installFailedIssue.Id():       installFailedIssue,
		methodFailedIssue.Id():        methodFailedIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		resourceExistsIssue.Id():      resourceExistsIssue,
		permissionDeniedIssue.Id():    permissionDeniedIssue,
	}
)

// Values returns every issue ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	ids := maps.Keys(issues)
	slices.Sort(ids)
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
