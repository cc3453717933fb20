package task

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BUPT-a-out/test-script/internal/conf"
	"github.com/BUPT-a-out/test-script/internal/model"
)

// fakeCompiler 返回预设结果的编译器替身
type fakeCompiler struct {
	exe    string
	stderr string
	err    error
}

func (f *fakeCompiler) Compile(_ context.Context, _, _ string) (string, string, error) {
	return f.exe, f.stderr, f.err
}

// fakeRunner 返回预设运行结果的运行器替身，并记录是否被调用
type fakeRunner struct {
	outcome *model.ExecutionOutcome
	called  bool
}

func (f *fakeRunner) Run(_ context.Context, _, _ string) *model.ExecutionOutcome {
	f.called = true
	return f.outcome
}

// testPipeline 工具链的静态库指向空目录，参考输出必然生成失败
func testPipeline(t *testing.T, c *fakeCompiler, r *fakeRunner) *Pipeline {
	t.Helper()
	return &Pipeline{
		Compiler:  c,
		Runner:    r,
		Toolchain: &conf.ToolchainConfig{LibPath: filepath.Join(t.TempDir(), "lib.a")},
		WorkDir:   t.TempDir(),
	}
}

func normalOutcome(code int, stdout string) *model.ExecutionOutcome {
	return &model.ExecutionOutcome{
		Exit:   model.ExitStatus{Kind: model.ExitNormal, Code: code},
		Stdout: stdout,
	}
}

func TestRunCase_CompileFailureShortCircuit(t *testing.T) {
	// 编译失败直接判COMPILE_ERROR，不运行程序，stderr按行数截断
	longStderr := strings.Repeat("error: line\n", 10)
	c := &fakeCompiler{stderr: longStderr, err: os.ErrInvalid}
	r := &fakeRunner{}
	p := testPipeline(t, c, r)

	res := p.RunCase(context.Background(), model.TestCase{Name: "bad", SourceFile: "bad.sy"})

	if res.Verdict != model.VerdictCompileError {
		t.Fatalf("Verdict = %s, want COMPILE_ERROR", res.Verdict)
	}
	if r.called {
		t.Error("编译失败后不应运行程序")
	}
	if n := len(strings.Split(res.Detail, "\n")); n != 5 {
		t.Errorf("失败详情行数 = %d, want 5", n)
	}
}

func TestRunCase_MalformedExpectedFile(t *testing.T) {
	// 期望输出文件最后一行不是整数：判RUNTIME_ERROR，不中断批次
	dir := t.TempDir()
	outFile := filepath.Join(dir, "p.out")
	if err := os.WriteFile(outFile, []byte("abc\n"), 0644); err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}

	c := &fakeCompiler{exe: filepath.Join(dir, "p")}
	r := &fakeRunner{outcome: normalOutcome(0, "")}
	p := testPipeline(t, c, r)

	res := p.RunCase(context.Background(), model.TestCase{
		Name:       "p",
		SourceFile: filepath.Join(dir, "p.sy"),
		OutputFile: outFile,
	})

	if res.Verdict != model.VerdictRuntimeError {
		t.Errorf("Verdict = %s, want RUNTIME_ERROR", res.Verdict)
	}
}

func TestRunCase_WithExpectedFile(t *testing.T) {
	dir := t.TempDir()
	outFile := filepath.Join(dir, "p.out")
	if err := os.WriteFile(outFile, []byte("hi\n0\n"), 0644); err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}

	tc := model.TestCase{Name: "p", SourceFile: filepath.Join(dir, "p.sy"), OutputFile: outFile}

	t.Run("输出和状态一致判PASS", func(t *testing.T) {
		p := testPipeline(t, &fakeCompiler{exe: "p"}, &fakeRunner{outcome: normalOutcome(0, "hi\n")})
		if res := p.RunCase(context.Background(), tc); res.Verdict != model.VerdictPass {
			t.Errorf("Verdict = %s, want PASS (detail: %s)", res.Verdict, res.Detail)
		}
	})

	t.Run("输出不匹配判FAIL_OUTPUT", func(t *testing.T) {
		p := testPipeline(t, &fakeCompiler{exe: "p"}, &fakeRunner{outcome: normalOutcome(0, "bye\n")})
		res := p.RunCase(context.Background(), tc)
		if res.Verdict != model.VerdictFailOutput {
			t.Errorf("Verdict = %s, want FAIL_OUTPUT", res.Verdict)
		}
		if res.Mismatch == nil || res.Mismatch.Line != 1 {
			t.Errorf("Mismatch = %+v, want 第1行", res.Mismatch)
		}
	})
}

func TestRunCase_ReferenceFallbackChecksExitStatus(t *testing.T) {
	// 无期望输出文件、参考输出生成失败：退化为只检查退出状态为0
	dir := t.TempDir()
	tc := model.TestCase{Name: "p", SourceFile: filepath.Join(dir, "p.sy")}

	t.Run("退出0判PASS", func(t *testing.T) {
		p := testPipeline(t, &fakeCompiler{exe: "p"}, &fakeRunner{outcome: normalOutcome(0, "任意输出\n")})
		p.UseReference = true
		if res := p.RunCase(context.Background(), tc); res.Verdict != model.VerdictPass {
			t.Errorf("Verdict = %s, want PASS (detail: %s)", res.Verdict, res.Detail)
		}
	})

	t.Run("非零退出判FAIL_STATUS", func(t *testing.T) {
		p := testPipeline(t, &fakeCompiler{exe: "p"}, &fakeRunner{outcome: normalOutcome(1, "")})
		p.UseReference = true
		res := p.RunCase(context.Background(), tc)
		if res.Verdict != model.VerdictFailStatus {
			t.Errorf("Verdict = %s, want FAIL_STATUS", res.Verdict)
		}
	})

	t.Run("不启用参考输出时非零退出也判PASS", func(t *testing.T) {
		p := testPipeline(t, &fakeCompiler{exe: "p"}, &fakeRunner{outcome: normalOutcome(42, "")})
		if res := p.RunCase(context.Background(), tc); res.Verdict != model.VerdictPass {
			t.Errorf("Verdict = %s, want PASS", res.Verdict)
		}
	})
}

func TestTruncateLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{
			name:  "不足n行时保持原样",
			input: "error: a\nerror: b",
			n:     5,
			want:  "error: a\nerror: b",
		},
		{
			name:  "超过n行时截断",
			input: "1\n2\n3\n4\n5\n6\n7",
			n:     5,
			want:  "1\n2\n3\n4\n5",
		},
		{
			name:  "首尾空白被去掉",
			input: "\n  error: x  \n",
			n:     5,
			want:  "error: x",
		},
		{
			name:  "空串",
			input: "",
			n:     5,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateLines(tt.input, tt.n)
			if got != tt.want {
				t.Errorf("truncateLines() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateLinesKeepsLineCount(t *testing.T) {
	long := strings.Repeat("line\n", 20)
	got := truncateLines(long, 5)
	if n := len(strings.Split(got, "\n")); n != 5 {
		t.Errorf("截断后行数 = %d, want 5", n)
	}
}
