package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const document = `{
  "_type": "Project", "_id": "p", "name": "Shop", "_format": 2,
  "ownedElements": [{
    "_type": "Model", "_id": "m", "name": "Domain",
    "ownedElements": [
      {"_type": "Class", "_id": "order", "name": "Order",
       "attributes": [{"_type": "Property", "_id": "total", "name": "total"}]},
      {"_type": "Class", "_id": "customer", "name": "Customer"},
      {"_type": "Dependency", "_id": "dep", "source": {"$ref": "customer"}, "target": {"$ref": "order"}}
    ]
  }]
}`

type fixture struct {
	dir   string
	doc   string
	index string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Setenv("MODELREPO_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("LOGGING_LEVEL", "ERROR")
	dir := t.TempDir()
	f := &fixture{dir: dir, doc: filepath.Join(dir, "shop.json"), index: filepath.Join(dir, "index.db")}
	require.NoError(t, os.WriteFile(f.doc, []byte(document), 0644))
	return f
}

// run executes the CLI with the fixture's document and index, resetting the
// flag variables a previous run may have set.
func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	treeDepth, showAll, showJSON, searchType, searchLimit = 0, false, false, "", 20
	deletePlan, moveCopy, setField, noIndex, dryRun = false, false, "", false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append(args, "--document", f.doc, "--index", f.index))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestReadCommands(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"tree"}, []string{"Project Shop [p]", "    ownedElements: Class Order [order]", "      attributes: Property total [total]"}},
		{[]string{"tree", "m", "--depth", "1"}, []string{"Model Domain [m]", "… 3 more"}},
		{[]string{"show", "order"}, []string{"Class Order [order]", "owner: m (ownedElements)", "attributes: [total]", "Referenced by:", "Dependency"}},
		{[]string{"show", "total", "--json"}, []string{`"_type": "Property"`}},
		{[]string{"select", "@Class"}, []string{"[Class] order", "[Class] customer"}},
		{[]string{"search", "cust"}, []string{"[Class] customer"}},
		{[]string{"refs", "order"}, []string{"Referrers (2):", "[Dependency] dep", "Relationships (1):", "Views (0):"}},
		{[]string{"delete", "order", "--plan"}, []string{"[Class] order Order", "[Dependency] dep"}},
		{[]string{"move", "targets", "total"}, []string{"[Class] customer"}},
		{[]string{"create", "types", "order"}, []string{"Property", "Method", "Relationships from order: Dependency"}},
		{[]string{"list", "m"}, []string{"[Class] order Order", "[Class] customer Customer", "[Dependency] dep"}},
		{[]string{"validate"}, []string{"6 elements, no problems"}},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			out, err := f.run(t, tt.args...)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}

	_, err := f.run(t, "show", "nope")
	assert.ErrorContains(t, err, "not found")
}

func TestEditCommandsSaveAndJournal(t *testing.T) {
	f := newFixture(t)
	original := filepath.Join(f.dir, "original.json")
	require.NoError(t, os.WriteFile(original, []byte(document), 0644))

	out, err := f.run(t, "create", "m", "Class", "Invoice")
	require.NoError(t, err)
	assert.Contains(t, out, "Created Class: Invoice")

	out, err = f.run(t, "rename", "order", "Purchase")
	require.NoError(t, err)
	assert.Contains(t, out, "Renamed order to Purchase")

	out, err = f.run(t, "rename", "order", "true", "--field", "isAbstract")
	require.NoError(t, err)
	assert.Contains(t, out, "isAbstract")

	out, err = f.run(t, "move", "total", "customer")
	require.NoError(t, err)
	assert.Contains(t, out, "Moved")

	out, err = f.run(t, "search", "Invoice")
	require.NoError(t, err)
	assert.Contains(t, out, "[Class]", "edits are saved to the document")

	out, err = f.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "create class")
	assert.Contains(t, out, "do")

	out, err = f.run(t, "index", "search", "Purch")
	require.NoError(t, err)
	assert.Contains(t, out, "[Class] order Purchase")

	out, err = f.run(t, "diff", original)
	require.NoError(t, err)
	assert.Contains(t, out, "~ order")
	assert.Contains(t, out, `~ name: "Order" -> "Purchase"`)
	assert.Contains(t, out, "+ isAbstract: true")
}

func TestDryRun(t *testing.T) {
	f := newFixture(t)
	before, err := os.ReadFile(f.doc)
	require.NoError(t, err)

	out, err := f.run(t, "delete", "order", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run")

	after, err := os.ReadFile(f.doc)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	out, err = f.run(t, "diff", f.doc, f.doc)
	require.NoError(t, err)
	assert.Contains(t, out, "No differences")
}

func TestEditErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "create", "order", "NodeView", "x")
	assert.Error(t, err)

	_, err = f.run(t, "delete", "p")
	assert.ErrorContains(t, err, "project root")

	_, err = f.run(t, "move", "reorder", "total", "many")
	assert.ErrorContains(t, err, "invalid position")
}
