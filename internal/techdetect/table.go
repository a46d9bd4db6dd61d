package techdetect

// DefaultTable returns the built-in detector rule set. Configuration may
// append custom detectors after these; order is significant.
func DefaultTable() Table {
	return Table{
		{Name: "Node.js", Slug: "nodejs", MarkerFiles: []string{"package.json"}},
		{Name: "TypeScript", Slug: "typescript", MarkerFiles: []string{"tsconfig.json"}, ManifestKeys: []string{"typescript"}, Extensions: []string{".ts", ".tsx"}},
		{Name: "React", Slug: "react", ManifestKeys: []string{"react", "react-dom"}, Extensions: []string{".jsx", ".tsx"}},
		{Name: "Next.js", Slug: "nextjs", MarkerFiles: []string{"next.config.js", "next.config.mjs", "next.config.ts"}, ManifestKeys: []string{"next"}},
		{Name: "Vite", Slug: "vite", MarkerFiles: []string{"vite.config.js", "vite.config.ts", "vite.config.mjs"}, ManifestKeys: []string{"vite"}},
		{Name: "Vue", Slug: "vue", MarkerFiles: []string{"vue.config.js", "nuxt.config.ts"}, ManifestKeys: []string{"vue", "nuxt"}, Extensions: []string{".vue"}},
		{Name: "Svelte", Slug: "svelte", MarkerFiles: []string{"svelte.config.js"}, ManifestKeys: []string{"svelte", "@sveltejs/kit"}, Extensions: []string{".svelte"}},
		{Name: "Angular", Slug: "angular", MarkerFiles: []string{"angular.json"}, ManifestKeys: []string{"@angular/core"}},
		{Name: "Tailwind CSS", Slug: "tailwind", MarkerFiles: []string{"tailwind.config.js", "tailwind.config.ts"}, ManifestKeys: []string{"tailwindcss"}},
		{Name: "Electron", Slug: "electron", ManifestKeys: []string{"electron"}},
		{Name: "JavaScript", Slug: "javascript", Extensions: []string{".js", ".mjs", ".cjs"}},
		{Name: "Go", Slug: "go", MarkerFiles: []string{"go.mod"}, Extensions: []string{".go"}},
		{Name: "Rust", Slug: "rust", MarkerFiles: []string{"Cargo.toml"}, Extensions: []string{".rs"}},
		{Name: "Python", Slug: "python", MarkerFiles: []string{"pyproject.toml", "requirements.txt", "setup.py", "Pipfile"}, Extensions: []string{".py"}},
		{Name: "Django", Slug: "django", MarkerFiles: []string{"manage.py"}, ManifestKeys: []string{"django"}},
		{Name: "Flask", Slug: "flask", ManifestKeys: []string{"flask"}},
		{Name: "Java", Slug: "java", MarkerFiles: []string{"pom.xml", "build.gradle", "build.gradle.kts"}, Extensions: []string{".java"}},
		{Name: "Kotlin", Slug: "kotlin", MarkerFiles: []string{"build.gradle.kts"}, Extensions: []string{".kt", ".kts"}},
		{Name: "Swift", Slug: "swift", MarkerFiles: []string{"Package.swift"}, Extensions: []string{".swift"}},
		{Name: "Ruby", Slug: "ruby", MarkerFiles: []string{"Gemfile"}, Extensions: []string{".rb"}},
		{Name: "Rails", Slug: "rails", MarkerFiles: []string{"config/application.rb"}, ManifestKeys: []string{"rails"}},
		{Name: "PHP", Slug: "php", MarkerFiles: []string{"composer.json"}, Extensions: []string{".php"}},
		{Name: "Laravel", Slug: "laravel", MarkerFiles: []string{"artisan"}, ManifestKeys: []string{"laravel/framework"}},
		{Name: "Elixir", Slug: "elixir", MarkerFiles: []string{"mix.exs"}, Extensions: []string{".ex", ".exs"}},
		{Name: "C", Slug: "c", Extensions: []string{".c", ".h"}},
		{Name: "C++", Slug: "cpp", MarkerFiles: []string{"CMakeLists.txt"}, Extensions: []string{".cpp", ".cc", ".cxx", ".hpp"}},
		{Name: "C#", Slug: "csharp", Extensions: []string{".cs"}},
		{Name: ".NET", Slug: "dotnet", MarkerFiles: []string{"global.json", "Directory.Build.props"}},
		{Name: "Docker", Slug: "docker", MarkerFiles: []string{"Dockerfile", "docker-compose.yml", "docker-compose.yaml", "compose.yaml"}},
	}
}
