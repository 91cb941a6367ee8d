package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseToolFileCSV(t *testing.T) {
	csvData := "name,category,tags,featured,url\n" +
		"Stable Diffusion,image,open-source; local,true,https://example.com/sd\n" +
		"Whisper,audio,,false,\n"

	tools, err := ParseToolFile("exports/tools.csv", []byte(csvData), "")
	require.NoError(t, err)
	require.Len(t, tools, 2)
	require.Equal(t, "stable-diffusion", tools[0].ID)
	require.Equal(t, []string{"open-source", "local"}, tools[0].Tags)
	require.True(t, tools[0].Featured)
	require.Equal(t, "tools.csv", tools[0].Meta["imported_from"])
	require.Nil(t, tools[1].Tags)
}

func TestParseToolFileLatin1(t *testing.T) {
	// "Caf\xe9 AI" in ISO-8859-1
	data := []byte("id,name\ncafe,Caf\xe9 AI\n")
	tools, err := ParseToolFile("tools.csv", data, "latin1")
	require.NoError(t, err)
	require.Equal(t, "Café AI", tools[0].Name)
}

func TestParseToolFileJSONWithBOM(t *testing.T) {
	data := []byte("\xef\xbb\xbf{\"tools\":[{\"id\":\"a\",\"name\":\"A\",\"meta\":{\"k\":\"v\"}}]}")
	tools, err := ParseToolFile("tools.JSON", data, "utf-8")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"k": "v", "imported_from": "tools.JSON"}, tools[0].Meta)
}

func TestParseToolFileErrors(t *testing.T) {
	_, err := ParseToolFile("tools.xml", []byte("<x/>"), "")
	require.Error(t, err)

	_, err = ParseToolFile("tools.csv", []byte("id,title\n1,x\n"), "")
	require.Error(t, err)

	_, err = ParseToolFile("tools.csv", []byte("name\nx\n"), "klingon-8")
	require.Error(t, err)
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "github-copilot", slugify("  GitHub Copilot! "))
	require.Equal(t, "gpt-4o", slugify("GPT-4o"))
	require.Equal(t, "", slugify("???"))
}
