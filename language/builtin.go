package language

import "github.com/dhamidi/rainbow/bracket"

func lineComment(opener string) bracket.ScopePattern {
	return bracket.ScopePattern{Name: "comment", Opener: opener}
}

func blockComment(opener, closer string) bracket.ScopePattern {
	return bracket.ScopePattern{Name: "comment", Opener: opener, Closer: closer}
}

func nestedComment(opener, closer string) bracket.ScopePattern {
	return bracket.ScopePattern{Name: "comment", Opener: opener, Closer: closer, Nestable: true}
}

func quoted(quote string) bracket.ScopePattern {
	return bracket.ScopePattern{Name: "string", Opener: quote, Closer: quote, Escape: `\`}
}

func raw(opener, closer string) bracket.ScopePattern {
	return bracket.ScopePattern{Name: "string", Opener: opener, Closer: closer}
}

func at(offset int, text string) []bracket.OffsetCondition {
	return []bracket.OffsetCondition{{Offset: offset, Text: text}}
}

// cFamily is the comment and string syntax shared by C and its descendants.
func cFamily(extra ...bracket.ScopePattern) []bracket.ScopePattern {
	return append([]bracket.ScopePattern{
		lineComment("//"),
		blockComment("/*", "*/"),
		quoted(`"`),
		quoted(`'`),
	}, extra...)
}

func builtin() []Language {
	return []Language{
		{
			Name:    "go",
			Aliases: []string{"golang"},
			Scopes:  cFamily(raw("`", "`")),
		},
		{
			Name:    "c",
			Aliases: []string{"h", "objective-c", "objc"},
			Scopes:  cFamily(),
		},
		{
			Name:    "cpp",
			Aliases: []string{"c++", "cc", "cxx", "hpp", "cuda"},
			Scopes: cFamily(bracket.ScopePattern{
				Name:   "string",
				Opener: `R"(`,
				Closer: `)"`,
			}),
		},
		{
			Name:    "csharp",
			Aliases: []string{"c#", "cs"},
			Scopes:  append([]bracket.ScopePattern{raw(`@"`, `"`)}, cFamily()...),
		},
		{
			Name:    "java",
			Aliases: []string{"groovy", "scala"},
			Scopes:  cFamily(raw(`"""`, `"""`)),
		},
		{
			Name:    "javascript",
			Aliases: []string{"js", "javascriptreact", "jsx", "mjs"},
			Scopes:  cFamily(quoted("`")),
		},
		{
			Name:    "typescript",
			Aliases: []string{"ts", "typescriptreact", "tsx"},
			Scopes:  cFamily(quoted("`")),
		},
		{
			Name:    "rust",
			Aliases: []string{"rs"},
			Scopes: []bracket.ScopePattern{
				lineComment("//"),
				nestedComment("/*", "*/"),
				quoted(`"`),
				// Character literals; a lone quote starts a lifetime.
				{Name: "string", Opener: "'", Closer: "'", Escape: `\`, Open: bracket.Conditions{MustMatchAtOffset: at(1, `\`)}},
				{Name: "string", Opener: "'", Closer: "'", Open: bracket.Conditions{MustMatchAtOffset: at(2, "'")}},
			},
		},
		{
			Name:    "python",
			Aliases: []string{"py", "python3", "python 2", "starlark"},
			Scopes: []bracket.ScopePattern{
				lineComment("#"),
				quoted(`"""`),
				quoted(`'''`),
				quoted(`"`),
				quoted(`'`),
			},
		},
		{
			Name:    "ruby",
			Aliases: []string{"rb"},
			Scopes: []bracket.ScopePattern{
				lineComment("#"),
				blockComment("=begin", "=end"),
				quoted(`"`),
				quoted(`'`),
			},
		},
		{
			Name:    "shellscript",
			Aliases: []string{"bash", "sh", "zsh", "ksh", "shell"},
			Scopes: []bracket.ScopePattern{
				// $# is the argument count, not a comment.
				{Name: "comment", Opener: "#", Open: bracket.Conditions{MustNotMatchAtOffset: at(-1, "$")}},
				quoted(`"`),
				raw(`'`, `'`),
			},
		},
		{
			Name: "lua",
			Scopes: []bracket.ScopePattern{
				blockComment("--[[", "]]"),
				lineComment("--"),
				raw("[[", "]]"),
				quoted(`"`),
				quoted(`'`),
			},
		},
		{
			Name:    "json",
			Aliases: []string{"jsonc", "json5"},
			Scopes: []bracket.ScopePattern{
				lineComment("//"),
				blockComment("/*", "*/"),
				quoted(`"`),
			},
		},
		{
			Name:    "yaml",
			Aliases: []string{"yml"},
			Scopes: []bracket.ScopePattern{
				lineComment("#"),
				quoted(`"`),
				raw(`'`, `'`),
			},
		},
		{
			Name:    "sql",
			Aliases: []string{"mysql", "postgresql", "plpgsql", "sqlite"},
			Scopes: []bracket.ScopePattern{
				lineComment("--"),
				blockComment("/*", "*/"),
				raw(`'`, `'`),
				raw(`"`, `"`),
			},
		},
		{
			Name:    "css",
			Aliases: []string{"scss", "less"},
			Scopes: []bracket.ScopePattern{
				blockComment("/*", "*/"),
				quoted(`"`),
				quoted(`'`),
			},
		},
		{
			Name:    "php",
			Aliases: []string{"phtml"},
			Scopes:  cFamily(lineComment("#")),
		},
		{
			Name:   "swift",
			Scopes: []bracket.ScopePattern{lineComment("//"), nestedComment("/*", "*/"), quoted(`"""`), quoted(`"`)},
		},
		{
			Name:    "kotlin",
			Aliases: []string{"kt", "kts"},
			Scopes:  []bracket.ScopePattern{lineComment("//"), nestedComment("/*", "*/"), raw(`"""`, `"""`), quoted(`"`), quoted(`'`)},
		},
	}
}
