package analyzer

// VibePrompt instructs the classifier to answer with a single JSON object
const VibePrompt = `You are analyzing a social media image/thumbnail from a nightlife venue to determine the current vibe and energy.

Analyze this image and respond with ONLY a JSON object (no markdown, no explanation) in this exact format:
{
    "energy_level": <1-10 integer>,
    "crowd_level": <1-10 integer>,
    "vibe_tags": [<list of 2-4 descriptive tags>],
    "description": "<one sentence describing the scene>",
    "confidence": <0.0-1.0 float>
}

Scoring guide:
- energy_level: 1=empty/dead, 5=moderate activity, 10=absolutely packed and wild
- crowd_level: 1=empty, 5=half capacity, 10=shoulder to shoulder
- vibe_tags: Choose from or similar to: "Techno", "House", "Hip-Hop", "Latin", "Chill", "Hype", "Dark", "Bright", "Intimate", "Massive", "VIP", "Underground", "Mainstream", "Live Music", "DJ Set", "Dancing", "Lounge"
- confidence: How confident you are in this assessment (low if image is blurry, unclear, or not of a venue)

If the image is not of a venue/party scene, still provide your best guess but set confidence low.
Respond with ONLY the JSON object, nothing else.`
