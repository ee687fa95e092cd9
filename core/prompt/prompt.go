// Package prompt renders the instruction text sent to the generative model.
// Pure string building, no I/O.
package prompt

import "fmt"

// SystemInstruction biases the grounded generation pass toward current,
// trend-aware picks instead of evergreen defaults.
func SystemInstruction() string {
	return "You are a music curator who keeps up with current charts and social media trends. " +
		"Ground every suggestion in what is popular right now: prefer songs that are trending or recently released, " +
		"and make each pick specific to what you actually see in the image rather than a generic mood match."
}

// MultiSong renders the three-song instruction. genre is accepted for API
// symmetry but the three-song text does not mention it; the single-song text
// does. Inputs are interpolated verbatim.
func MultiSong(language, genre, context string, grounded bool) string {
	return fmt.Sprintf(`You are an expert music curator for social media. Your task is to analyze the provided image and suggest THREE different songs that match its vibe for an Instagram story.

**Image Analysis:**
1.  **Mood & Vibe:** What is the overall feeling of the image (e.g., happy, melancholic, energetic, romantic, peaceful)?
2.  **Context:** What is happening in the image? Is it a landscape, a portrait, an event, a candid moment?
3.  **Visuals:** Note the colors, lighting, and composition. Are they bright and vibrant, or dark and moody?%s

**Song Suggestion Criteria:**
*   **Relevance:** Each song's mood, tempo, and lyrics should align with the image's atmosphere.
*   **Variety:** Provide 3 DIFFERENT songs with slightly varied interpretations of the image's mood (e.g., one upbeat, one mellow, one intense).
*   **Instagram Story Fit:** All songs should be engaging and suitable for a short video format.
*   **No Duplicates:** Ensure all 3 songs are unique and from different artists if possible.%s

Based on your analysis, provide THREE song suggestions. All songs must be in **%s**.

Your response must be a JSON object with a "songs" array containing 3 song objects. Each song object must include:
1. Song_title: The title of the recommended song
2. Artist: The artist who performed the song

**IMPORTANT:** Return exactly 3 songs, each offering a slightly different mood interpretation while matching the overall image vibe.

Format your response as valid JSON with the structure: {"songs": [{Song_title, Artist}, {Song_title, Artist}, {Song_title, Artist}]}
`, contextBlock(context), groundingBlock(language, grounded), language)
}

// SingleSong renders the one-song instruction, which additionally asks for a
// short Summary explaining the match.
func SingleSong(language, genre, context string, grounded bool) string {
	return fmt.Sprintf(`You are an expert music curator for social media. Your task is to analyze the provided image and suggest a single song that perfectly matches its vibe for an Instagram story.

**Image Analysis:**
1.  **Mood & Vibe:** What is the overall feeling of the image (e.g., happy, melancholic, energetic, romantic, peaceful)?
2.  **Context:** What is happening in the image? Is it a landscape, a portrait, an event, a candid moment?
3.  **Visuals:** Note the colors, lighting, and composition. Are they bright and vibrant, or dark and moody?%s

**Song Suggestion Criteria:**
*   **Relevance:** The song's mood, tempo, and lyrics should align with the image's atmosphere.
*   **Instagram Story Fit:** The song should be engaging and suitable for a short video format.%s

Based on your analysis, provide one song suggestion. The song must be in **%s**. %s

Your response must include:
1. Song_title: The title of the recommended song
2. Artist: The artist who performed the song
3. Summary: A concise paragraph (2-3 sentences) explaining what you analyzed in the image and why this specific song matches the image's mood, context, and visual elements.

Format your response as valid JSON with these three fields.
`, contextBlock(context), groundingBlock(language, grounded), language, genreText(genre))
}

// ConvertBatch renders the second-pass instruction that turns a curator's
// free-text answer into the three-song JSON shape.
func ConvertBatch(raw string) string {
	return fmt.Sprintf(`Below is a music curator's answer describing song suggestions for an image. Extract the suggested songs from it.

%s

Your response must be a JSON object with a "songs" array containing exactly 3 song objects. Each song object must include:
1. Song_title: The title of the recommended song
2. Artist: The artist who performed the song

Do not invent songs that the curator did not mention unless fewer than 3 are present, in which case fill the remainder with the closest matches to the curator's described mood.

Format your response as valid JSON with the structure: {"songs": [{Song_title, Artist}, {Song_title, Artist}, {Song_title, Artist}]}
`, raw)
}

// ConvertSingle is the one-song counterpart of ConvertBatch.
func ConvertSingle(raw string) string {
	return fmt.Sprintf(`Below is a music curator's answer describing a song suggestion for an image. Extract the suggested song from it.

%s

Your response must include:
1. Song_title: The title of the recommended song
2. Artist: The artist who performed the song
3. Summary: A concise paragraph (2-3 sentences) explaining why this song matches the image, based on the curator's reasoning.

Format your response as valid JSON with these three fields.
`, raw)
}

func genreText(genre string) string {
	if genre == "" {
		return ""
	}
	return fmt.Sprintf("The preferred genre is %s.", genre)
}

func contextBlock(context string) string {
	if context == "" {
		return ""
	}
	return fmt.Sprintf("\n\n**User Context:** The user has provided this context about the image: \"%s\". Consider this information along with your visual analysis.", context)
}

func groundingBlock(language string, grounded bool) string {
	if !grounded {
		return ""
	}
	return fmt.Sprintf(`

**Web Search:** Use your web search capability before picking songs. Formulate queries that combine %s-language music, the mood and setting you detect in the image, and a recency qualifier such as "latest" or "trending now", and prefer songs that are genuinely popular at the moment.`, language)
}
