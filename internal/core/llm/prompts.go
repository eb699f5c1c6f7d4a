package llm

// classifyPrompt constrains the model to a single enumerated token so
// the answer can be validated mechanically.
const classifyPrompt = `You are an entertainment content classifier for trending topics.
Given a trending keyword and optional context, decide whether it refers to entertainment content.
Consider movie titles, TV and web series, actors, directors, entertainment characters, franchises, award events, and streaming platforms as entertainment.

Answer with EXACTLY one token and nothing else:
- "movie" if it refers to a movie or someone/something associated with a specific movie
- "tv" if it refers to a TV or web series
- "not_entertainment" otherwise

Keyword: %s
Context: %s`

// resolvePrompt requests the canonical title as constrained JSON.
const resolvePrompt = `Given a trending keyword that refers to entertainment content, identify the specific movie it refers to.
For actor, director or character names, use their most recent or most notable movie.

Return ONLY JSON with keys: "title" (the exact canonical movie title) and optional "year" (4-digit release year, omit if unknown).
If no specific movie can be identified, return {"title": ""}.

Keyword: %s
Context: %s`
