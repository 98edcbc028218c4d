package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestProfile(t *testing.T) string {
	t.Helper()
	text := `
name = "train-demo"
partition = "gpu"
comment = "laion"
work_dir = "/fsx/open_clip/src"
python_path = ["/fsx/open_clip/src"]
modules = ["openmpi"]
source_env = ["/fsx/env.sh"]
shards = "s3://laion/data/{00000..00099}.tar"
wandb_project = "open_clip"
wandb_entity = "laion"
run_name = "demo"
`
	path := filepath.Join(t.TempDir(), "train.toml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestScriptCmd_Renders(t *testing.T) {
	path := writeTestProfile(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"script", "-p", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "#!/bin/bash\n"))
	assert.Contains(t, out, "#SBATCH --partition=gpu\n")
	assert.Contains(t, out, "#SBATCH --job-name=train-demo\n")
	assert.Contains(t, out, "#SBATCH --nodes=2\n")
	assert.Contains(t, out, "#SBATCH --ntasks-per-node=8\n")
	assert.Contains(t, out, "#SBATCH --gres=gpu:8\n")
	assert.Contains(t, out, "module load openmpi\n")
	assert.Contains(t, out, "source /fsx/env.sh\n")
	assert.Contains(t, out, "shardrun -chdir /fsx/open_clip/src")
	assert.Contains(t, out, `'--shards=pipe:aws s3 cp s3://laion/data/{00000..00099}.tar -'`)
	assert.Contains(t, out, "--run_name=demo")
	assert.Less(t, strings.Index(out, "module load"), strings.Index(out, "shardrun"),
		"setup must come before the payload")
}

func TestScriptCmd_WritesFile(t *testing.T) {
	path := writeTestProfile(t)
	outPath := filepath.Join(t.TempDir(), "train.sbatch")

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"script", "-p", path, "-o", outPath})
	defer func() {
		rootCmd.SetArgs(nil)
		scriptOut = ""
	}()

	require.NoError(t, rootCmd.Execute())
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "#SBATCH --job-name=train-demo\n")
}

func TestScriptCmd_MissingProfile(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"script", "-p", filepath.Join(t.TempDir(), "absent.toml")})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	assert.Error(t, rootCmd.Execute())
}
