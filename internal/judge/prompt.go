package judge

import "strings"

const promptTemplate = `Security evaluation of {language} code to be executed on a developer's machine.

Working directory: {cwd}
{context_block}

` + "```{language}\n{code}\n```" + `

Evaluate safety. Respond with EXACTLY one line, no other output:

ALLOW: <brief reason>
— Code only does: computation, data formatting, printing output, reading/writing
  files in the working directory or temp directories (/tmp, $TMPDIR, tempfile
  module), string/regex operations, JSON/YAML/CSV parsing, encoding, hashing,
  math, type checking, or version queries.

ASK: <brief reason>
— Code does ANY of: write/delete/move/rename files outside temp dirs or the
  working directory, network requests, subprocess or shell execution (os.system,
  subprocess), access secrets or credentials (.env, SSH keys, tokens), modify
  system configuration, install packages, or access sensitive paths outside the
  working directory.`

const lenientPromptTemplate = `Security evaluation of {language} code to be executed on a developer's machine.
The developer has explicitly asked for a lenient review: give them the
benefit of the doubt on anything scoped to this working directory.

Working directory: {cwd}
{context_block}

` + "```{language}\n{code}\n```" + `

Evaluate safety. Respond with EXACTLY one line, no other output:

ALLOW: <brief reason>
— Code does computation, file I/O scoped to the working directory or temp
  directories, or anything else that cannot affect the system, network, or
  secrets outside this project.

ASK: <brief reason>
— Code deletes or overwrites files outside the working directory, makes
  network requests, spawns a shell or subprocess, reads credentials or
  secrets, or modifies system configuration.`

func buildPrompt(language, code, cwd, context string) string {
	return renderPrompt(promptTemplate, language, code, cwd, context)
}

func buildPromptLenient(language, code, cwd, context string) string {
	return renderPrompt(lenientPromptTemplate, language, code, cwd, context)
}

func renderPrompt(template, language, code, cwd, context string) string {
	contextBlock := ""
	if strings.TrimSpace(context) != "" {
		contextBlock = "\n" + context + "\n"
	}
	r := strings.NewReplacer(
		"{language}", language,
		"{code}", code,
		"{cwd}", cwd,
		"{context_block}", contextBlock,
	)
	return r.Replace(template)
}
