package analysis_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	"github.com/silex-lang/silex/analysis"
)

const sample = `// Vault contract
struct Account { owner: string, balance: u64 }

enum State { Open, Closed }

namespace vault {
    fn deposit(acc: Account, amount: u64) -> u64 {
        let total: u64 = acc.balance + amount;
        require(total >= amount, "overflow");
        return total;
    }
}

entry main() {
    let acc = Account { owner: "alice", balance: 10 };
    let state = State::Open;
    foreach i in [1, 2, 3] {
        println(vault::deposit(acc, i));
    }
    return 0;
}
`

func TestAnalyzer_Sample(t *testing.T) {
	t.Parallel()

	result := analyze(t, sample)

	assertNoDiagnostics(t, result)

	tests := []struct {
		text string
		want []analysis.Category
	}{
		{"Account", []analysis.Category{analysis.Struct, analysis.Struct, analysis.Struct}},
		{"owner", []analysis.Category{analysis.Variable, analysis.Variable}},
		{"State", []analysis.Category{analysis.Enum, analysis.Enum}},
		{"Open", []analysis.Category{analysis.Enum, analysis.Enum}},
		{"vault", []analysis.Category{analysis.Namespace, analysis.Namespace}},
		{"deposit", []analysis.Category{analysis.Function, analysis.Function}},
		{"acc", []analysis.Category{
			analysis.Parameter, analysis.Parameter, // declaration and use inside deposit
			analysis.Variable, analysis.Variable, // let in main and argument
		}},
		{"require", []analysis.Category{analysis.Function}},
		{"println", []analysis.Category{analysis.Function}},
		{"let", []analysis.Category{
			analysis.VariableDeclarationAccessory,
			analysis.VariableDeclarationAccessory,
			analysis.VariableDeclarationAccessory,
		}},
		{"in", []analysis.Category{analysis.VariableDeclarationAccessory}},
		{"u64", []analysis.Category{analysis.Type, analysis.Type, analysis.Type, analysis.Type}},
		{"// Vault contract", []analysis.Category{analysis.Comment}},
		{`"overflow"`, []analysis.Category{analysis.String}},
		{"10", []analysis.Category{analysis.Number}},
		{"entry", []analysis.Category{analysis.Keyword}},
		{">=", []analysis.Category{analysis.Operator}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, categoriesOf(result, tt.text)); diff != "" {
				t.Errorf("categories of %q mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}

	var deposit *analysis.CallSite

	for i := range result.Calls {
		if result.Calls[i].Name == "deposit" {
			deposit = &result.Calls[i]
		}
	}

	if deposit == nil {
		t.Fatal("deposit call not recorded")
	}

	if deposit.Args != 2 || !deposit.Arities.Contains(2) {
		t.Errorf("deposit call = %+v, want 2 args with arity 2", *deposit)
	}
}

func TestAnalyzer_Idempotent(t *testing.T) {
	t.Parallel()

	a := newAnalyzer()

	first, err := a.Analyze(context.Background(), "test.slx", []byte(sample+"\nunknown_thing;\n"))
	if err != nil {
		t.Fatal(err)
	}

	second, err := a.Analyze(context.Background(), "test.slx", []byte(sample+"\nunknown_thing;\n"))
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second pass differs (-first +second):\n%s", diff)
	}
}

func TestAnalyzer_Shadowing(t *testing.T) {
	t.Parallel()

	result := analyze(t, `struct x {}
{
    let x = 1;
    x;
}
x;
`)

	want := []analysis.Category{analysis.Struct, analysis.Variable, analysis.Variable, analysis.Struct}

	if diff := cmp.Diff(want, categoriesOf(result, "x")); diff != "" {
		t.Errorf("categories of x mismatch (-want +got):\n%s", diff)
	}

	assertNoDiagnostics(t, result)
}

func TestAnalyzer_UnknownIdentifier(t *testing.T) {
	t.Parallel()

	result := analyze(t, "foo();")

	if len(result.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %+v", len(result.Diagnostics), result.Diagnostics)
	}

	d := result.Diagnostics[0]

	if d.Code != analysis.CodeUnknownIdentifier {
		t.Errorf("Code = %q, want %q", d.Code, analysis.CodeUnknownIdentifier)
	}

	if d.Severity != analysis.SeverityError {
		t.Errorf("Severity = %v, want error", d.Severity)
	}

	if d.Message != "Unknown identifier: 'foo'" {
		t.Errorf("Message = %q", d.Message)
	}

	if d.Span.Start.Line != 1 || d.Span.Start.Column != 1 || d.Span.End.Column != 3 {
		t.Errorf("Span = %v..%v, want 1:1..1:3", d.Span.Start, d.Span.End)
	}

	if diff := cmp.Diff([]analysis.Category{analysis.UnknownIdentifier}, categoriesOf(result, "foo")); diff != "" {
		t.Errorf("category mismatch (-want +got):\n%s", diff)
	}

	if got := result.Tokens[0].Category; uint32(got) != 11 {
		t.Errorf("unknown identifier id = %d, want 11", got)
	}
}

func TestAnalyzer_UseBeforeDeclaration(t *testing.T) {
	t.Parallel()

	unknown3 := []analysis.Category{
		analysis.UnknownIdentifier, analysis.UnknownIdentifier, analysis.UnknownIdentifier,
	}

	tests := []struct {
		name     string
		input    string
		text     string
		opts     []analysis.Option
		want     []analysis.Category
		wantDiag int
	}{
		{
			name:     "variable stays unknown",
			input:    "x;\nlet x = 1;\nx;",
			text:     "x",
			want:     unknown3,
			wantDiag: 3,
		},
		{
			name:     "function stays unknown",
			input:    "helper();\nfn helper() {}\nhelper();\n",
			text:     "helper",
			want:     unknown3,
			wantDiag: 3,
		},
		{
			name:     "late declaration replaces variable placeholder",
			input:    "x;\nlet x = 1;\nx;",
			text:     "x",
			opts:     []analysis.Option{analysis.WithLateDeclarations(true)},
			want:     []analysis.Category{analysis.UnknownIdentifier, analysis.Variable, analysis.Variable},
			wantDiag: 1,
		},
		{
			name:     "late declaration replaces function placeholder",
			input:    "helper();\nfn helper() {}\nhelper();\n",
			text:     "helper",
			opts:     []analysis.Option{analysis.WithLateDeclarations(true)},
			want:     []analysis.Category{analysis.UnknownIdentifier, analysis.Function, analysis.Function},
			wantDiag: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := analyze(t, tt.input, tt.opts...)

			if diff := cmp.Diff(tt.want, categoriesOf(result, tt.text)); diff != "" {
				t.Errorf("categories mismatch (-want +got):\n%s", diff)
			}

			if len(result.Diagnostics) != tt.wantDiag {
				t.Errorf("got %d diagnostics, want %d", len(result.Diagnostics), tt.wantDiag)
			}

			for _, d := range result.Diagnostics {
				if d.Code != analysis.CodeUnknownIdentifier {
					t.Errorf("Code = %q, want %q", d.Code, analysis.CodeUnknownIdentifier)
				}
			}
		})
	}
}

func TestAnalyzer_DeltaEncoding(t *testing.T) {
	t.Parallel()

	result := analyze(t, "let abc\n  let b")

	want := []uint32{
		0, 0, 3, uint32(analysis.VariableDeclarationAccessory), 0,
		0, 4, 3, uint32(analysis.Variable), 0,
		1, 2, 3, uint32(analysis.VariableDeclarationAccessory), 0,
		0, 4, 1, uint32(analysis.Variable), 0,
	}

	if diff := cmp.Diff(want, result.Data); diff != "" {
		t.Errorf("Data mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzer_FunctionWinsOverScope(t *testing.T) {
	t.Parallel()

	result := analyze(t, `let println = 1;
println;
`)

	want := []analysis.Category{analysis.Variable, analysis.Function}

	if diff := cmp.Diff(want, categoriesOf(result, "println")); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}

	assertNoDiagnostics(t, result)
}

func TestAnalyzer_ArityNotEnforced(t *testing.T) {
	t.Parallel()

	result := analyze(t, "require(1, 2, 3);")

	assertNoDiagnostics(t, result)

	want := []analysis.CallSite{{Name: "require", Args: 3, Arities: analysis.Arityset{2}}}

	if diff := cmp.Diff(want, result.Calls, cmpIgnoreSpan); diff != "" {
		t.Errorf("Calls mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzer_LexerErrorResilience(t *testing.T) {
	t.Parallel()

	result := analyze(t, `let a = 1;
let b = @;
let c = a;
`)

	if len(result.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %+v", len(result.Diagnostics), result.Diagnostics)
	}

	d := result.Diagnostics[0]
	if d.Code != analysis.CodeSyntaxError {
		t.Errorf("Code = %q, want %q", d.Code, analysis.CodeSyntaxError)
	}

	if d.Span.Start.Line != 2 || d.Span.Start.Column != 9 || d.Span.End.Column != 9 {
		t.Errorf("Span = %v..%v, want 2:9..2:9", d.Span.Start, d.Span.End)
	}

	want := []analysis.Category{analysis.Variable, analysis.Variable}
	if diff := cmp.Diff(want, categoriesOf(result, "a")); diff != "" {
		t.Errorf("categories of a mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]analysis.Category{analysis.Variable}, categoriesOf(result, "c")); diff != "" {
		t.Errorf("categories of c mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzer_UnterminatedString(t *testing.T) {
	t.Parallel()

	result := analyze(t, "let s = \"abc\nlet t = 1;\n")

	assertHasDiagnostic(t, result, analysis.CodeSyntaxError)

	if diff := cmp.Diff([]analysis.Category{analysis.Variable}, categoriesOf(result, "t")); diff != "" {
		t.Errorf("categories of t mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzer_ArgumentCounting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []analysis.CallSite
	}{
		{
			name:  "nested calls",
			input: "println(max(1, 2), [3, 4]);",
			want: []analysis.CallSite{
				{Name: "max", Args: 2, Arities: analysis.Arityset{2}},
				{Name: "println", Args: 2, Arities: analysis.Arityset{1}},
			},
		},
		{
			name:  "no arguments",
			input: "get_contract_hash();",
			want:  []analysis.CallSite{{Name: "get_contract_hash", Args: 0, Arities: analysis.Arityset{0}}},
		},
		{
			name:  "trailing comma",
			input: "max(1, 2,);",
			want:  []analysis.CallSite{{Name: "max", Args: 2, Arities: analysis.Arityset{2}}},
		},
		{
			name:  "any token starts an argument",
			input: `assert(-1, "msg");`,
			want:  []analysis.CallSite{{Name: "assert", Args: 2, Arities: analysis.Arityset{1, 2}}},
		},
		{
			name:  "grouping parens are not calls",
			input: "println((1 + 2) * 3);",
			want:  []analysis.CallSite{{Name: "println", Args: 1, Arities: analysis.Arityset{1}}},
		},
		{
			name:  "namespaced library call",
			input: "let h = Hash::from_hex(\"00\");",
			want:  []analysis.CallSite{{Name: "from_hex", Args: 1, Arities: analysis.Arityset{1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := analyze(t, tt.input)

			assertNoDiagnostics(t, result)

			if diff := cmp.Diff(tt.want, result.Calls, cmpIgnoreSpan); diff != "" {
				t.Errorf("Calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnalyzer_Declarations(t *testing.T) {
	t.Parallel()

	result := analyze(t, `fn add(a: u64, b: u64) -> u64 {
    return a + b;
}
add(1, 2);
`)

	assertNoDiagnostics(t, result)

	want := []analysis.Category{analysis.Parameter, analysis.Parameter}
	if diff := cmp.Diff(want, categoriesOf(result, "a")); diff != "" {
		t.Errorf("categories of a mismatch (-want +got):\n%s", diff)
	}

	wantCalls := []analysis.CallSite{{Name: "add", Args: 2, Arities: analysis.Arityset{2}}}
	if diff := cmp.Diff(wantCalls, result.Calls, cmpIgnoreSpan); diff != "" {
		t.Errorf("Calls mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzer_GenericParameterTypes(t *testing.T) {
	t.Parallel()

	result := analyze(t, `fn f(m: map<string, u64>, flag: bool) {}
f(1, 2);
`)

	assertNoDiagnostics(t, result)

	if len(result.Calls) != 1 || !result.Calls[0].Arities.Contains(2) || result.Calls[0].Arities.Contains(3) {
		t.Errorf("Calls = %+v, want f with arity {2}", result.Calls)
	}

	if diff := cmp.Diff([]analysis.Category{analysis.Type}, categoriesOf(result, "string")); diff != "" {
		t.Errorf("categories of string mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzer_CallArgumentsAreNotParameters(t *testing.T) {
	t.Parallel()

	result := analyze(t, `fn f(x: u64) {}
let y = 1;
f(y);
`)

	want := []analysis.Category{analysis.Variable, analysis.Variable}
	if diff := cmp.Diff(want, categoriesOf(result, "y")); diff != "" {
		t.Errorf("categories of y mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzer_Namespaces(t *testing.T) {
	t.Parallel()

	const input = `namespace foo {
    fn bar() {}
}
foo::bar();
bar();
`

	tests := []struct {
		name     string
		opts     []analysis.Option
		wantBar  []analysis.Category
		wantDiag int
	}{
		{
			name:    "permanent by default",
			wantBar: []analysis.Category{analysis.Function, analysis.Function, analysis.Function},
		},
		{
			name:     "scoped namespaces",
			opts:     []analysis.Option{analysis.WithScopedNamespaces(true)},
			wantBar:  []analysis.Category{analysis.Function, analysis.Function, analysis.UnknownIdentifier},
			wantDiag: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := analyze(t, input, tt.opts...)

			if diff := cmp.Diff(tt.wantBar, categoriesOf(result, "bar")); diff != "" {
				t.Errorf("categories of bar mismatch (-want +got):\n%s", diff)
			}

			if diff := cmp.Diff([]analysis.Category{analysis.Namespace, analysis.Namespace}, categoriesOf(result, "foo")); diff != "" {
				t.Errorf("categories of foo mismatch (-want +got):\n%s", diff)
			}

			if len(result.Diagnostics) != tt.wantDiag {
				t.Errorf("got %d diagnostics, want %d", len(result.Diagnostics), tt.wantDiag)
			}
		})
	}
}

func TestAnalyzer_LibraryNamespacesAndMethods(t *testing.T) {
	t.Parallel()

	result := analyze(t, `let h = Hash::zero();
let s = "abc";
s.len();
s.missing_field;
`)

	assertNoDiagnostics(t, result)

	checks := map[string][]analysis.Category{
		"Hash":          {analysis.Namespace},
		"zero":          {analysis.Function},
		"len":           {analysis.Function},
		"missing_field": {analysis.Variable},
	}

	for text, want := range checks {
		if diff := cmp.Diff(want, categoriesOf(result, text)); diff != "" {
			t.Errorf("categories of %s mismatch (-want +got):\n%s", text, diff)
		}
	}
}

func TestAnalyzer_MethodDeclaration(t *testing.T) {
	t.Parallel()

	result := analyze(t, `struct Counter { n: u64 }
fn (c Counter) current() -> u64 {
    return c.n;
}
let k = Counter { n: 1 };
k.current();
`)

	assertNoDiagnostics(t, result)

	if diff := cmp.Diff([]analysis.Category{analysis.Parameter, analysis.Parameter}, categoriesOf(result, "c")); diff != "" {
		t.Errorf("categories of c mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]analysis.Category{analysis.Function, analysis.Function}, categoriesOf(result, "current")); diff != "" {
		t.Errorf("categories of current mismatch (-want +got):\n%s", diff)
	}

	wantCalls := []analysis.CallSite{{Name: "current", Args: 0, Arities: analysis.Arityset{0}}}
	if diff := cmp.Diff(wantCalls, result.Calls, cmpIgnoreSpan); diff != "" {
		t.Errorf("Calls mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzer_Keywords(t *testing.T) {
	t.Parallel()

	result := analyze(t, `import foo;
let x = 5u8 as u64;
if true { return null; } else { break; }
`)

	checks := map[string][]analysis.Category{
		"import": {analysis.Keyword},
		"as":     {analysis.VariableDeclarationAccessory},
		"if":     {analysis.Keyword},
		"else":   {analysis.Keyword},
		"return": {analysis.Keyword},
		"true":   {analysis.Literal},
		"null":   {analysis.Literal},
		"5u8":    {analysis.Number},
	}

	for text, want := range checks {
		if diff := cmp.Diff(want, categoriesOf(result, text)); diff != "" {
			t.Errorf("categories of %s mismatch (-want +got):\n%s", text, diff)
		}
	}
}

func TestAnalyzer_CommentsDoNotBreakContext(t *testing.T) {
	t.Parallel()

	result := analyze(t, `let // the counter
    counter = 0; /* block
comment */ counter;
`)

	assertNoDiagnostics(t, result)

	if diff := cmp.Diff([]analysis.Category{analysis.Variable, analysis.Variable}, categoriesOf(result, "counter")); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]analysis.Category{analysis.Comment}, categoriesOf(result, "// the counter")); diff != "" {
		t.Errorf("comment category mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzer_EmitUnmapped(t *testing.T) {
	t.Parallel()

	plain := analyze(t, "println(1);")
	if len(plain.Tokens) != 2 {
		t.Errorf("got %d tokens without unmapped, want 2", len(plain.Tokens))
	}

	all := analyze(t, "println(1);", analysis.WithEmitUnmapped(true))
	if len(all.Tokens) != 5 {
		t.Fatalf("got %d tokens with unmapped, want 5", len(all.Tokens))
	}

	if all.Tokens[1].Category != analysis.Other || all.Data[8] != 255 {
		t.Errorf("'(' token = %+v, want Other (255)", all.Tokens[1])
	}
}

func TestAnalyzer_MismatchedBrackets(t *testing.T) {
	t.Parallel()

	result := analyze(t, "}) ] fn f( { let x = 1; ")

	if len(result.Stray) != 3 {
		t.Errorf("got %d stray closers, want 3", len(result.Stray))
	}

	if len(result.Unclosed) != 2 {
		t.Errorf("got %d unclosed brackets, want 2", len(result.Unclosed))
	}

	strict := analyze(t, "}) ] fn f( { let x = 1; ", analysis.WithRules(analysis.StrictRules()...))
	assertHasDiagnostic(t, strict, analysis.UnclosedBracketRule.Name)
	assertHasDiagnostic(t, strict, analysis.UnmatchedBracketRule.Name)
}

func TestAnalyzer_Blocks(t *testing.T) {
	t.Parallel()

	result := analyze(t, `fn f() {
    if true {
    }
}
`)

	var braces []analysis.Block

	for _, b := range result.Blocks {
		if b.Kind.IsBrace() {
			braces = append(braces, b)
		}
	}

	if len(braces) != 2 {
		t.Fatalf("got %d brace blocks, want 2", len(braces))
	}

	// Inner block closes first.
	if braces[0].Open.Start.Line != 2 || braces[0].Close.Start.Line != 3 {
		t.Errorf("inner block = lines %d-%d, want 2-3", braces[0].Open.Start.Line, braces[0].Close.Start.Line)
	}

	if braces[1].Open.Start.Line != 1 || braces[1].Close.Start.Line != 4 {
		t.Errorf("outer block = lines %d-%d, want 1-4", braces[1].Open.Start.Line, braces[1].Close.Start.Line)
	}
}

func TestAnalyzer_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newAnalyzer().Analyze(ctx, "test.slx", []byte(sample))
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}

	if result != nil {
		t.Errorf("expected nil result, got %+v", result)
	}
}

func TestAnalyzer_ConcurrentPassesAreIsolated(t *testing.T) {
	t.Parallel()

	a := newAnalyzer()

	var g errgroup.Group

	for i := range 8 {
		g.Go(func() error {
			name := fmt.Sprintf("local%d", i)
			src := fmt.Sprintf("fn %s() {}\n%s();\nlocal%d();\n", name, name, (i+1)%8)

			result, err := a.Analyze(context.Background(), name+".slx", []byte(src))
			if err != nil {
				return err
			}

			// Only the other document's function is unknown here.
			if len(result.Diagnostics) != 1 {
				return fmt.Errorf("%s: got %d diagnostics, want 1", name, len(result.Diagnostics))
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if _, ok := a.Registry().Lookup(analysis.NoReceiver, nil, "local0"); ok {
		t.Error("local declaration leaked into the shared registry")
	}
}

var cmpIgnoreSpan = cmp.FilterPath(func(p cmp.Path) bool {
	return p.Last().String() == ".Span"
}, cmp.Ignore())

func TestAnalyzer_TokenKinds(t *testing.T) {
	t.Parallel()

	result := analyze(t, "fn f() {}")

	var kinds []string
	for _, tok := range result.Tokens {
		kinds = append(kinds, tok.Kind)
	}

	if diff := cmp.Diff([]string{"fn", "Ident"}, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestResult_HasErrors(t *testing.T) {
	t.Parallel()

	if analyze(t, "let x = 1;").HasErrors() {
		t.Error("clean input reported errors")
	}

	warnOnly := analyze(t, "require(1);", analysis.WithRules(analysis.ArityMismatchRule))
	if len(warnOnly.Diagnostics) != 1 || warnOnly.HasErrors() {
		t.Errorf("warnings alone should not count as errors: %v", warnOnly.Diagnostics)
	}

	if !analyze(t, "foo;").HasErrors() {
		t.Error("unknown identifier should be an error")
	}
}
